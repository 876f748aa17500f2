package service

import (
	"context"
	"strings"
	"time"

	"agri_chat/internal/domain"
	"agri_chat/internal/repository"
	"agri_chat/pkg/logger"
)

type NotifyService interface {
	EnsureSystemRoom(ctx context.Context) (*domain.Room, error)
	// NotifyAll публикует одно сообщение в комнату системных уведомлений,
	// предварительно добавив туда всех пользователей. Без пользователей -
	// тихий no-op.
	NotifyAll(ctx context.Context, title, content string) error
}

type notifyService struct {
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
	chat         ChatService
	systemSender string
	log          logger.Logger
}

func NewNotifyService(
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	chat ChatService,
	systemSender string,
	log logger.Logger,
) NotifyService {
	return &notifyService{
		roomRepo:     roomRepo,
		userRepo:     userRepo,
		chat:         chat,
		systemSender: systemSender,
		log:          log,
	}
}

func (s *notifyService) EnsureSystemRoom(ctx context.Context) (*domain.Room, error) {
	// Тот же оптимистичный паттерн, что и для direct-комнат, только ключ
	// фиксированный
	key := domain.SystemRoomKey
	room, err := s.roomRepo.GetByKey(ctx, key)
	if err == nil {
		return room, nil
	}

	room = &domain.Room{
		Type:      domain.RoomTypeGroup,
		Name:      domain.SystemRoomName,
		Key:       &key,
		CreatedAt: time.Now(),
	}
	if createErr := s.roomRepo.Create(ctx, room); createErr != nil {
		return s.roomRepo.GetByKey(ctx, key)
	}
	return room, nil
}

func (s *notifyService) NotifyAll(ctx context.Context, title, content string) error {
	body := composeNotice(title, content)
	if body == "" {
		return nil
	}

	room, err := s.EnsureSystemRoom(ctx)
	if err != nil {
		return err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	for _, u := range users {
		if err := s.chat.EnsureMember(ctx, room, u); err != nil {
			return err
		}
	}

	sender := s.pickSender(ctx, users)

	// Уведомление идёт тем же путём, что и обычное сообщение, со всеми его
	// гарантиями персистентности и рассылки
	if _, err := s.chat.SendMessage(ctx, room.ID, sender, body); err != nil {
		return err
	}

	s.log.Info("System notification sent", "room_id", room.ID, "sender", sender.Username, "recipients", len(users))
	return nil
}

// pickSender - выделенный системный аккаунт, иначе первый администратор,
// иначе первый попавшийся пользователь
func (s *notifyService) pickSender(ctx context.Context, users []*domain.User) *domain.User {
	if s.systemSender != "" {
		if u, err := s.userRepo.GetByUsername(ctx, s.systemSender); err == nil {
			return u
		}
	}
	for _, u := range users {
		if strings.EqualFold(u.Role, domain.RoleAdmin) {
			return u
		}
	}
	return users[0]
}

func composeNotice(title, content string) string {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	switch {
	case title != "" && content != "":
		return domain.SystemNoticePrefix + title + "\n" + content
	case title != "":
		return domain.SystemNoticePrefix + title
	case content != "":
		return domain.SystemNoticePrefix + content
	default:
		return ""
	}
}
