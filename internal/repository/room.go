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

type RoomRepository interface {
	// Create возвращает pkgerrors.ErrDuplicateKey, если комната с таким
	// room_key уже создана конкурентным запросом
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetByKey(ctx context.Context, key string) (*domain.Room, error)
	ListByMember(ctx context.Context, username string) ([]*domain.Room, error)
}

type roomRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewRoomRepository(db *pgxpool.Pool, log logger.Logger) RoomRepository {
	return &roomRepository{db: db, log: log}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO chat_rooms (type, name, room_key, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		room.Type, room.Name, room.Key, room.CreatedAt,
	).Scan(&room.ID, &room.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.ErrDuplicateKey
		}
		r.log.Error("Failed to create room", "error", err)
		return err
	}

	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	query := `
		SELECT id, type, COALESCE(name, ''), room_key, created_at
		FROM chat_rooms
		WHERE id = $1
	`
	return r.scanRoom(r.db.QueryRow(ctx, query, id))
}

func (r *roomRepository) GetByKey(ctx context.Context, key string) (*domain.Room, error) {
	query := `
		SELECT id, type, COALESCE(name, ''), room_key, created_at
		FROM chat_rooms
		WHERE room_key = $1
	`
	return r.scanRoom(r.db.QueryRow(ctx, query, key))
}

func (r *roomRepository) ListByMember(ctx context.Context, username string) ([]*domain.Room, error) {
	query := `
		SELECT r.id, r.type, COALESCE(r.name, ''), r.room_key, r.created_at
		FROM chat_rooms r
		JOIN chat_memberships m ON m.room_id = r.id
		JOIN users u ON u.id = m.user_id
		WHERE u.username = $1
		ORDER BY r.created_at ASC
	`

	rows, err := r.db.Query(ctx, query, username)
	if err != nil {
		r.log.Error("Failed to list rooms by member", "error", err)
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.Type, &room.Name, &room.Key, &room.CreatedAt); err != nil {
			r.log.Error("Failed to scan room", "error", err)
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (r *roomRepository) scanRoom(row pgx.Row) (*domain.Room, error) {
	room := &domain.Room{}
	err := row.Scan(&room.ID, &room.Type, &room.Name, &room.Key, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.ErrRoomNotFound
		}
		r.log.Error("Failed to get room", "error", err)
		return nil, err
	}
	return room, nil
}
