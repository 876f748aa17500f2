package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"agri_chat/pkg/logger"
)

// FriendshipRepository - внешний для чата ответ "являются ли пользователи
// подтверждёнными контактами". Проверку выполняет вызывающая сторона перед
// созданием личной комнаты, сам сервис комнат её не навязывает.
type FriendshipRepository interface {
	ExistsBetween(ctx context.Context, userAID, userBID int64) (bool, error)
}

type friendshipRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewFriendshipRepository(db *pgxpool.Pool, log logger.Logger) FriendshipRepository {
	return &friendshipRepository{db: db, log: log}
}

func (r *friendshipRepository) ExistsBetween(ctx context.Context, userAID, userBID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM user_friendships
			WHERE status = 'accepted'
			  AND ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userAID, userBID).Scan(&exists); err != nil {
		r.log.Error("Failed to check friendship", "error", err)
		return false, err
	}
	return exists, nil
}
