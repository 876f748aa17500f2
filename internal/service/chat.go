package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"agri_chat/internal/domain"
	"agri_chat/internal/repository"
	pkgerrors "agri_chat/pkg/errors"
	"agri_chat/pkg/logger"
)

// Broadcaster доставляет событие живым каналам участников комнаты.
// Реализуется ws.Dispatcher.
type Broadcaster interface {
	Broadcast(ctx context.Context, roomID int64, event any)
}

type ChatService interface {
	EnsureDirectRoom(ctx context.Context, userA, userB *domain.User) (*domain.Room, error)
	CreateGroupRoom(ctx context.Context, name string) (*domain.Room, error)
	EnsureMember(ctx context.Context, room *domain.Room, user *domain.User) error
	IsMember(ctx context.Context, roomID int64, username string) (bool, error)
	ListRooms(ctx context.Context, username string) ([]*RoomInfo, error)
	RoomInfo(ctx context.Context, room *domain.Room) (*RoomInfo, error)
	SendMessage(ctx context.Context, roomID int64, sender *domain.User, content string) (*domain.ChatMessage, error)
	GetRecentMessages(ctx context.Context, roomID int64, limit int) ([]*domain.ChatMessage, error)
	GetHistory(ctx context.Context, roomID int64) ([]*domain.ChatMessage, error)
	RecallMessage(ctx context.Context, messageID int64, actor *domain.User) (*domain.ChatMessage, error)
	DeleteMessage(ctx context.Context, messageID int64, actor *domain.User) error
}

// RoomInfo - комната с участниками для REST-ответов
type RoomInfo struct {
	ID        int64              `json:"id"`
	Type      string             `json:"type"`
	Name      string             `json:"name,omitempty"`
	System    bool               `json:"system"`
	CreatedAt time.Time          `json:"createdAt"`
	Members   []domain.UserBrief `json:"members"`
}

type chatService struct {
	roomRepo       repository.RoomRepository
	membershipRepo repository.MembershipRepository
	messageRepo    repository.MessageRepository
	broadcaster    Broadcaster
	log            logger.Logger
}

func NewChatService(
	roomRepo repository.RoomRepository,
	membershipRepo repository.MembershipRepository,
	messageRepo repository.MessageRepository,
	broadcaster Broadcaster,
	log logger.Logger,
) ChatService {
	return &chatService{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		messageRepo:    messageRepo,
		broadcaster:    broadcaster,
		log:            log,
	}
}

// BuildDirectKey - канонический ключ пары пользователей, не зависящий от
// порядка аргументов
func BuildDirectKey(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	if a <= b {
		return a + "|" + b
	}
	return b + "|" + a
}

func (s *chatService) EnsureDirectRoom(ctx context.Context, userA, userB *domain.User) (*domain.Room, error) {
	if userA == nil || userB == nil || userA.Username == "" || userB.Username == "" {
		return nil, pkgerrors.ErrBadRequest
	}

	key := BuildDirectKey(userA.Username, userB.Username)
	room, err := s.ensureRoomByKey(ctx, key, func() *domain.Room {
		return &domain.Room{
			Type:      domain.RoomTypeDirect,
			Key:       &key,
			CreatedAt: time.Now(),
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.EnsureMember(ctx, room, userA); err != nil {
		return nil, err
	}
	if err := s.EnsureMember(ctx, room, userB); err != nil {
		return nil, err
	}

	return room, nil
}

// ensureRoomByKey - оптимистичная вставка: читаем по ключу, при отсутствии
// создаём, конфликт уникальности гасим повторным чтением. Гонка двух
// конкурентных созданий никогда не видна вызывающей стороне.
func (s *chatService) ensureRoomByKey(ctx context.Context, key string, build func() *domain.Room) (*domain.Room, error) {
	room, err := s.roomRepo.GetByKey(ctx, key)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, pkgerrors.ErrRoomNotFound) {
		return nil, err
	}

	room = build()
	err = s.roomRepo.Create(ctx, room)
	if err == nil {
		return room, nil
	}
	if errors.Is(err, pkgerrors.ErrDuplicateKey) {
		return s.roomRepo.GetByKey(ctx, key)
	}
	return nil, err
}

func (s *chatService) CreateGroupRoom(ctx context.Context, name string) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.ErrBadRequest
	}

	room := &domain.Room{
		Type:      domain.RoomTypeGroup,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *chatService) EnsureMember(ctx context.Context, room *domain.Room, user *domain.User) error {
	if room == nil || user == nil {
		return nil
	}

	exists, err := s.membershipRepo.Exists(ctx, room.ID, user.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	m := &domain.Membership{
		RoomID:   room.ID,
		UserID:   user.ID,
		JoinedAt: time.Now(),
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		// Конкурентное добавление того же участника - не ошибка
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil
		}
		return err
	}
	return nil
}

func (s *chatService) IsMember(ctx context.Context, roomID int64, username string) (bool, error) {
	return s.membershipRepo.ExistsByUsername(ctx, roomID, username)
}

func (s *chatService) ListRooms(ctx context.Context, username string) ([]*RoomInfo, error) {
	rooms, err := s.roomRepo.ListByMember(ctx, username)
	if err != nil {
		return nil, err
	}

	infos := make([]*RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		info, err := s.RoomInfo(ctx, room)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *chatService) RoomInfo(ctx context.Context, room *domain.Room) (*RoomInfo, error) {
	members, err := s.membershipRepo.ListMemberBriefs(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return &RoomInfo{
		ID:        room.ID,
		Type:      room.Type,
		Name:      room.Name,
		System:    room.IsSystem(),
		CreatedAt: room.CreatedAt,
		Members:   members,
	}, nil
}

func (s *chatService) SendMessage(ctx context.Context, roomID int64, sender *domain.User, content string) (*domain.ChatMessage, error) {
	if sender == nil {
		return nil, pkgerrors.ErrBadRequest
	}
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > domain.MaxContentLength {
		return nil, pkgerrors.ErrBadRequest
	}

	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	isMember, err := s.membershipRepo.ExistsByUsername(ctx, roomID, sender.Username)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, pkgerrors.ErrNotMember
	}

	msg := &domain.ChatMessage{
		RoomID:     roomID,
		SenderID:   sender.ID,
		Sender:     sender.Username,
		SenderInfo: sender.Brief(),
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, roomID, domain.NewMessageEvent(msg))
	return msg, nil
}

func (s *chatService) GetRecentMessages(ctx context.Context, roomID int64, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	messages, err := s.messageRepo.ListRecent(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}

	// Читаем последние N по убыванию и разворачиваем: клиенту история
	// отдаётся по возрастанию времени
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *chatService) GetHistory(ctx context.Context, roomID int64) ([]*domain.ChatMessage, error) {
	return s.messageRepo.ListByRoomAsc(ctx, roomID)
}

func (s *chatService) RecallMessage(ctx context.Context, messageID int64, actor *domain.User) (*domain.ChatMessage, error) {
	msg, err := s.authorizeAuthor(ctx, messageID, actor)
	if err != nil {
		return nil, err
	}

	// Повторный отзыв перезаписывает и рассылает заново: содержимое
	// идемпотентно, рассылка - нет
	if err := s.messageRepo.UpdateContent(ctx, msg.ID, domain.RecallPlaceholder); err != nil {
		return nil, err
	}
	msg.Content = domain.RecallPlaceholder

	s.broadcaster.Broadcast(ctx, msg.RoomID, domain.NewRecallEvent(msg))
	return msg, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, messageID int64, actor *domain.User) error {
	msg, err := s.authorizeAuthor(ctx, messageID, actor)
	if err != nil {
		return err
	}

	if err := s.messageRepo.Delete(ctx, msg.ID); err != nil {
		return err
	}

	s.broadcaster.Broadcast(ctx, msg.RoomID, domain.NewDeleteEvent(msg.RoomID, msg.ID))
	return nil
}

// authorizeAuthor - общая проверка recall/delete: сообщение существует,
// действующий пользователь состоит в комнате и является автором
func (s *chatService) authorizeAuthor(ctx context.Context, messageID int64, actor *domain.User) (*domain.ChatMessage, error) {
	if actor == nil || actor.Username == "" {
		return nil, pkgerrors.ErrBadRequest
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.membershipRepo.ExistsByUsername(ctx, msg.RoomID, actor.Username)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, pkgerrors.ErrNotMember
	}
	if msg.Sender != actor.Username {
		return nil, pkgerrors.ErrNotAuthor
	}

	return msg, nil
}
