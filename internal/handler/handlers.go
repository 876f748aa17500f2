package handler

import (
	"agri_chat/internal/config"
	"agri_chat/internal/service"
	"agri_chat/internal/ws"
	"agri_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Chat      *ChatHandler
	Announce  *AnnounceHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, registry *ws.Registry, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(registry),
		Auth:      NewAuthHandler(services.Auth, log),
		Chat:      NewChatHandler(services.Chat, services.User, log),
		Announce:  NewAnnounceHandler(services.Notify, log),
		WebSocket: NewWebSocketHandler(services.Auth, services.Chat, registry, cfg.Chat.PushTimeout, log),
	}
}
