package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agri_chat/pkg/logger"
)

type Repositories struct {
	User       UserRepository
	Room       RoomRepository
	Membership MembershipRepository
	Message    MessageRepository
	Friendship FriendshipRepository
	RateLimit  RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db, log),
		Room:       NewRoomRepository(db, log),
		Membership: NewMembershipRepository(db, log),
		Message:    NewMessageRepository(db, log),
		Friendship: NewFriendshipRepository(db, log),
		RateLimit:  NewRateLimitRepository(redis, log),
	}
}

// isUniqueViolation - нарушение уникального ограничения PostgreSQL (23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
