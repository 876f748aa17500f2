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

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List возвращает всех пользователей; используется только системными
	// уведомлениями
	List(ctx context.Context) ([]*domain.User, error)
}

type userRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewUserRepository(db *pgxpool.Pool, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

const userSelect = `
	SELECT id, username, password_hash, COALESCE(nickname, ''), COALESCE(email, ''),
	       COALESCE(phone, ''), COALESCE(address, ''), COALESCE(avatar_url, ''),
	       enabled, role, user_type, created_at
	FROM users
`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, nickname, email, phone, address,
		                   avatar_url, enabled, role, user_type, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
		        NULLIF($7, ''), $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		user.Username, user.PasswordHash, user.Nickname, user.Email, user.Phone,
		user.Address, user.AvatarURL, user.Enabled, user.Role, user.UserType, user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.ErrUserAlreadyExists
		}
		r.log.Error("Failed to create user", "error", err, "username", user.Username)
		return err
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, userSelect+` WHERE username = $1`, username))
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+` ORDER BY id ASC`)
	if err != nil {
		r.log.Error("Failed to list users", "error", err)
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := scanUserFields(rows, user); err != nil {
			r.log.Error("Failed to scan user", "error", err)
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	if err := scanUserFields(row, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user", "error", err)
		return nil, err
	}
	return user, nil
}

func scanUserFields(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Nickname, &user.Email,
		&user.Phone, &user.Address, &user.AvatarURL,
		&user.Enabled, &user.Role, &user.UserType, &user.CreatedAt,
	)
}
