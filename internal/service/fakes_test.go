package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"agri_chat/internal/domain"
	pkgerrors "agri_chat/pkg/errors"
)

// Общая in-memory подложка для фейковых репозиториев. Повторяет контракт
// PostgreSQL-слоя, включая ErrDuplicateKey на уникальных ограничениях.
type memStore struct {
	mu sync.Mutex

	users       map[int64]*domain.User
	usersByName map[string]int64
	rooms       map[int64]*domain.Room
	roomsByKey  map[string]int64
	memberships map[[2]int64]*domain.Membership // (roomID, userID)
	messages    map[int64]*domain.ChatMessage

	nextUserID int64
	nextRoomID int64
	nextMemID  int64
	nextMsgID  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int64]*domain.User),
		usersByName: make(map[string]int64),
		rooms:       make(map[int64]*domain.Room),
		roomsByKey:  make(map[string]int64),
		memberships: make(map[[2]int64]*domain.Membership),
		messages:    make(map[int64]*domain.ChatMessage),
	}
}

func (s *memStore) addUser(username, role string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	u := &domain.User{
		ID:        s.nextUserID,
		Username:  username,
		Nickname:  "nick-" + username,
		Enabled:   true,
		Role:      role,
		UserType:  domain.UserTypeFarmer,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	s.usersByName[u.Username] = u.ID
	return u
}

type fakeRoomRepo struct {
	s *memStore
}

func (r *fakeRoomRepo) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if room.Key != nil {
		if _, exists := r.s.roomsByKey[*room.Key]; exists {
			return pkgerrors.ErrDuplicateKey
		}
	}

	r.s.nextRoomID++
	room.ID = r.s.nextRoomID
	stored := *room
	r.s.rooms[room.ID] = &stored
	if room.Key != nil {
		r.s.roomsByKey[*room.Key] = room.ID
	}
	return nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id int64) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, pkgerrors.ErrRoomNotFound
	}
	c := *room
	return &c, nil
}

func (r *fakeRoomRepo) GetByKey(_ context.Context, key string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.roomsByKey[key]
	if !ok {
		return nil, pkgerrors.ErrRoomNotFound
	}
	c := *r.s.rooms[id]
	return &c, nil
}

func (r *fakeRoomRepo) ListByMember(_ context.Context, username string) ([]*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	userID, ok := r.s.usersByName[username]
	if !ok {
		return nil, nil
	}

	var rooms []*domain.Room
	for key, m := range r.s.memberships {
		if m.UserID != userID {
			continue
		}
		c := *r.s.rooms[key[0]]
		rooms = append(rooms, &c)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

type fakeMembershipRepo struct {
	s *memStore
}

func (r *fakeMembershipRepo) Create(_ context.Context, m *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]int64{m.RoomID, m.UserID}
	if _, exists := r.s.memberships[key]; exists {
		return pkgerrors.ErrDuplicateKey
	}

	r.s.nextMemID++
	m.ID = r.s.nextMemID
	stored := *m
	r.s.memberships[key] = &stored
	return nil
}

func (r *fakeMembershipRepo) Exists(_ context.Context, roomID, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.memberships[[2]int64{roomID, userID}]
	return ok, nil
}

func (r *fakeMembershipRepo) ExistsByUsername(_ context.Context, roomID int64, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	userID, ok := r.s.usersByName[username]
	if !ok {
		return false, nil
	}
	_, ok = r.s.memberships[[2]int64{roomID, userID}]
	return ok, nil
}

func (r *fakeMembershipRepo) ListMemberBriefs(_ context.Context, roomID int64) ([]domain.UserBrief, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var briefs []domain.UserBrief
	for key, m := range r.s.memberships {
		if key[0] != roomID {
			continue
		}
		briefs = append(briefs, r.s.users[m.UserID].Brief())
	}
	sort.Slice(briefs, func(i, j int) bool { return briefs[i].Username < briefs[j].Username })
	return briefs, nil
}

func (r *fakeMembershipRepo) ListMemberUsernames(_ context.Context, roomID int64) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var usernames []string
	for key, m := range r.s.memberships {
		if key[0] != roomID {
			continue
		}
		usernames = append(usernames, r.s.users[m.UserID].Username)
	}
	sort.Strings(usernames)
	return usernames, nil
}

type fakeMessageRepo struct {
	s *memStore
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextMsgID++
	msg.ID = r.s.nextMsgID
	stored := *msg
	r.s.messages[msg.ID] = &stored
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id int64) (*domain.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	msg, ok := r.s.messages[id]
	if !ok {
		return nil, pkgerrors.ErrMessageNotFound
	}
	c := *msg
	return &c, nil
}

func (r *fakeMessageRepo) ListByRoomAsc(_ context.Context, roomID int64) ([]*domain.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var messages []*domain.ChatMessage
	for _, msg := range r.s.messages {
		if msg.RoomID != roomID {
			continue
		}
		c := *msg
		messages = append(messages, &c)
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func (r *fakeMessageRepo) ListRecent(ctx context.Context, roomID int64, limit int) ([]*domain.ChatMessage, error) {
	asc, err := r.ListByRoomAsc(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(asc) > limit {
		asc = asc[len(asc)-limit:]
	}
	// по убыванию, как отдаёт SQL-слой
	desc := make([]*domain.ChatMessage, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		desc = append(desc, asc[i])
	}
	return desc, nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, id int64, content string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	msg, ok := r.s.messages[id]
	if !ok {
		return pkgerrors.ErrMessageNotFound
	}
	msg.Content = content
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.messages[id]; !ok {
		return pkgerrors.ErrMessageNotFound
	}
	delete(r.s.messages, id)
	return nil
}

type fakeUserRepo struct {
	s *memStore
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.usersByName[user.Username]; exists {
		return pkgerrors.ErrUserAlreadyExists
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	stored := *user
	r.s.users[user.ID] = &stored
	r.s.usersByName[user.Username] = user.ID
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, pkgerrors.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, ok := r.s.usersByName[username]
	if !ok {
		return nil, pkgerrors.ErrUserNotFound
	}
	c := *r.s.users[id]
	return &c, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []*domain.User
	for _, u := range r.s.users {
		c := *u
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// fakeBroadcaster записывает разосланные события
type fakeBroadcaster struct {
	mu     sync.Mutex
	rooms  []int64
	events []any
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, roomID int64, event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, roomID)
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) last() (int64, any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return 0, nil
	}
	return b.rooms[len(b.rooms)-1], b.events[len(b.events)-1]
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
