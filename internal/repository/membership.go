package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"agri_chat/internal/domain"
	pkgerrors "agri_chat/pkg/errors"
	"agri_chat/pkg/logger"
)

type MembershipRepository interface {
	// Create возвращает pkgerrors.ErrDuplicateKey при повторном добавлении
	// пользователя в ту же комнату
	Create(ctx context.Context, m *domain.Membership) error
	Exists(ctx context.Context, roomID, userID int64) (bool, error)
	ExistsByUsername(ctx context.Context, roomID int64, username string) (bool, error)
	ListMemberBriefs(ctx context.Context, roomID int64) ([]domain.UserBrief, error)
	ListMemberUsernames(ctx context.Context, roomID int64) ([]string, error)
}

type membershipRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMembershipRepository(db *pgxpool.Pool, log logger.Logger) MembershipRepository {
	return &membershipRepository{db: db, log: log}
}

func (r *membershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	query := `
		INSERT INTO chat_memberships (room_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, m.RoomID, m.UserID, m.JoinedAt).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.ErrDuplicateKey
		}
		r.log.Error("Failed to create membership", "error", err)
		return err
	}

	return nil
}

func (r *membershipRepository) Exists(ctx context.Context, roomID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM chat_memberships WHERE room_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, roomID, userID).Scan(&exists); err != nil {
		r.log.Error("Failed to check membership", "error", err)
		return false, err
	}
	return exists, nil
}

func (r *membershipRepository) ExistsByUsername(ctx context.Context, roomID int64, username string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM chat_memberships m
			JOIN users u ON u.id = m.user_id
			WHERE m.room_id = $1 AND u.username = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, roomID, username).Scan(&exists); err != nil {
		r.log.Error("Failed to check membership by username", "error", err)
		return false, err
	}
	return exists, nil
}

func (r *membershipRepository) ListMemberBriefs(ctx context.Context, roomID int64) ([]domain.UserBrief, error) {
	query := `
		SELECT u.username, COALESCE(u.nickname, ''), u.role, u.user_type,
		       COALESCE(u.avatar_url, ''), COALESCE(u.phone, '')
		FROM chat_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.joined_at ASC
	`

	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		r.log.Error("Failed to list member briefs", "error", err)
		return nil, err
	}
	defer rows.Close()

	var briefs []domain.UserBrief
	for rows.Next() {
		var b domain.UserBrief
		if err := rows.Scan(&b.Username, &b.Nickname, &b.Role, &b.UserType, &b.AvatarURL, &b.Phone); err != nil {
			r.log.Error("Failed to scan member brief", "error", err)
			return nil, err
		}
		briefs = append(briefs, b)
	}

	return briefs, rows.Err()
}

func (r *membershipRepository) ListMemberUsernames(ctx context.Context, roomID int64) ([]string, error) {
	query := `
		SELECT u.username
		FROM chat_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
	`

	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		r.log.Error("Failed to list member usernames", "error", err)
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			r.log.Error("Failed to scan member username", "error", err)
			return nil, err
		}
		usernames = append(usernames, username)
	}

	return usernames, rows.Err()
}
