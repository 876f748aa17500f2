package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agri_chat/internal/domain"
	pkgerrors "agri_chat/pkg/errors"
	"agri_chat/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error)
	// ListByRoomAsc - полная история комнаты по возрастанию (created_at, id)
	ListByRoomAsc(ctx context.Context, roomID int64) ([]*domain.ChatMessage, error)
	// ListRecent - последние limit сообщений по убыванию; вызывающая сторона
	// разворачивает список для отображения
	ListRecent(ctx context.Context, roomID int64, limit int) ([]*domain.ChatMessage, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

const messageSelect = `
	SELECT m.id, m.room_id, m.sender_id, m.content, m.created_at,
	       u.username, COALESCE(u.nickname, ''), u.role, u.user_type,
	       COALESCE(u.avatar_url, ''), COALESCE(u.phone, '')
	FROM chat_messages m
	JOIN users u ON u.id = m.sender_id
`

func (r *messageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (room_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		msg.RoomID, msg.SenderID, msg.Content, msg.CreatedAt,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return err
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err)
		return nil, err
	}
	return msg, nil
}

func (r *messageRepository) ListByRoomAsc(ctx context.Context, roomID int64) ([]*domain.ChatMessage, error) {
	query := messageSelect + `
		WHERE m.room_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`
	return r.queryMessages(ctx, query, roomID)
}

func (r *messageRepository) ListRecent(ctx context.Context, roomID int64, limit int) ([]*domain.ChatMessage, error) {
	query := messageSelect + `
		WHERE m.room_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
	`
	return r.queryMessages(ctx, query, roomID, limit)
}

func (r *messageRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	query := `UPDATE chat_messages SET content = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, content)
	if err != nil {
		r.log.Error("Failed to update message content", "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM chat_messages WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete message", "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (*domain.ChatMessage, error) {
	msg := &domain.ChatMessage{}
	err := row.Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt,
		&msg.SenderInfo.Username, &msg.SenderInfo.Nickname, &msg.SenderInfo.Role,
		&msg.SenderInfo.UserType, &msg.SenderInfo.AvatarURL, &msg.SenderInfo.Phone,
	)
	if err != nil {
		return nil, err
	}
	msg.Sender = msg.SenderInfo.Username
	return msg, nil
}
