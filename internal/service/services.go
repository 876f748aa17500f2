package service

import (
	"agri_chat/internal/config"
	"agri_chat/internal/repository"
	"agri_chat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	User      UserService
	Chat      ChatService
	Notify    NotifyService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, broadcaster Broadcaster, log logger.Logger) *Services {
	chat := NewChatService(repos.Room, repos.Membership, repos.Message, broadcaster, log)

	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT, log),
		User:      NewUserService(repos.User, repos.Friendship, log),
		Chat:      chat,
		Notify:    NewNotifyService(repos.Room, repos.User, chat, cfg.Chat.SystemSender, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
