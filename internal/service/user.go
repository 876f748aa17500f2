package service

import (
	"context"

	"agri_chat/internal/domain"
	"agri_chat/internal/repository"
	"agri_chat/pkg/logger"
)

type UserService interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// AreFriends - внешняя для чата проверка "подтверждённые контакты"
	AreFriends(ctx context.Context, userA, userB *domain.User) (bool, error)
}

type userService struct {
	userRepo       repository.UserRepository
	friendshipRepo repository.FriendshipRepository
	log            logger.Logger
}

func NewUserService(userRepo repository.UserRepository, friendshipRepo repository.FriendshipRepository, log logger.Logger) UserService {
	return &userService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		log:            log,
	}
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *userService) AreFriends(ctx context.Context, userA, userB *domain.User) (bool, error) {
	if userA == nil || userB == nil {
		return false, nil
	}
	return s.friendshipRepo.ExistsBetween(ctx, userA.ID, userB.ID)
}
