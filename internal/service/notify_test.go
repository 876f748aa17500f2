package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"agri_chat/internal/domain"
	"agri_chat/pkg/logger"
)

func newNotifyFixture(t *testing.T, systemSender string) (*memStore, NotifyService, *fakeBroadcaster) {
	t.Helper()

	store := newMemStore()
	broadcaster := &fakeBroadcaster{}
	log := logger.New("error")
	chat := NewChatService(
		&fakeRoomRepo{s: store},
		&fakeMembershipRepo{s: store},
		&fakeMessageRepo{s: store},
		broadcaster,
		log,
	)
	notify := NewNotifyService(
		&fakeRoomRepo{s: store},
		&fakeUserRepo{s: store},
		chat,
		systemSender,
		log,
	)
	return store, notify, broadcaster
}

func TestComposeNotice(t *testing.T) {
	require.Equal(t, domain.SystemNoticePrefix+"维护通知\n今晚停机", composeNotice("维护通知", "今晚停机"))
	require.Equal(t, domain.SystemNoticePrefix+"维护通知", composeNotice("维护通知", "  "))
	require.Equal(t, domain.SystemNoticePrefix+"今晚停机", composeNotice("", "今晚停机"))
	require.Equal(t, "", composeNotice("  ", ""))
}

func TestEnsureSystemRoom_Idempotent(t *testing.T) {
	store, notify, _ := newNotifyFixture(t, "")
	ctx := context.Background()

	first, err := notify.EnsureSystemRoom(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.RoomTypeGroup, first.Type)
	require.Equal(t, domain.SystemRoomName, first.Name)
	require.True(t, first.IsSystem())

	second, err := notify.EnsureSystemRoom(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.rooms, 1)
}

func TestNotifyAll_DeliversToEveryUser(t *testing.T) {
	store, notify, broadcaster := newNotifyFixture(t, "")
	ctx := context.Background()

	store.addUser("10000001", domain.RoleUser)
	store.addUser("10000002", domain.RoleUser)
	store.addUser("10000003", domain.RoleUser)

	require.NoError(t, notify.NotifyAll(ctx, "维护通知", "今晚停机两小时"))

	room, err := notify.EnsureSystemRoom(ctx)
	require.NoError(t, err)

	store.mu.Lock()
	memberCount := len(store.memberships)
	msgCount := len(store.messages)
	var body string
	for _, m := range store.messages {
		body = m.Content
	}
	store.mu.Unlock()

	require.Equal(t, 3, memberCount)
	require.Equal(t, 1, msgCount)
	require.Equal(t, domain.SystemNoticePrefix+"维护通知\n今晚停机两小时", body)

	roomID, event := broadcaster.last()
	require.Equal(t, room.ID, roomID)
	me, ok := event.(domain.MessageEvent)
	require.True(t, ok)
	require.Equal(t, domain.EventTypeMessage, me.Type)
	require.Equal(t, body, me.Content)
}

func TestNotifyAll_Repeat_KeepsSingleRoom(t *testing.T) {
	store, notify, _ := newNotifyFixture(t, "")
	ctx := context.Background()

	store.addUser("10000001", domain.RoleUser)
	store.addUser("10000002", domain.RoleUser)

	require.NoError(t, notify.NotifyAll(ctx, "первое", ""))
	require.NoError(t, notify.NotifyAll(ctx, "второе", ""))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.rooms, 1)
	require.Len(t, store.memberships, 2)
	require.Len(t, store.messages, 2)
}

func TestNotifyAll_NoUsersIsNoop(t *testing.T) {
	store, notify, broadcaster := newNotifyFixture(t, "")
	ctx := context.Background()

	require.NoError(t, notify.NotifyAll(ctx, "维护通知", "今晚停机"))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Empty(t, store.messages)
	require.Empty(t, store.memberships)
	require.Zero(t, broadcaster.count())
}

func TestNotifyAll_EmptyBodyIsNoop(t *testing.T) {
	store, notify, broadcaster := newNotifyFixture(t, "")
	ctx := context.Background()

	store.addUser("10000001", domain.RoleUser)

	require.NoError(t, notify.NotifyAll(ctx, "  ", ""))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Empty(t, store.rooms)
	require.Empty(t, store.messages)
	require.Zero(t, broadcaster.count())
}

func TestNotifyAll_SenderPreference(t *testing.T) {
	ctx := context.Background()

	// Выделенный системный аккаунт существует - берём его
	store, notify, _ := newNotifyFixture(t, "admin")
	store.addUser("10000001", domain.RoleUser)
	store.addUser("admin", domain.RoleAdmin)
	require.NoError(t, notify.NotifyAll(ctx, "t", "c"))
	require.Equal(t, "admin", singleSender(t, store))

	// Аккаунта нет - первый администратор
	store, notify, _ = newNotifyFixture(t, "admin")
	store.addUser("10000001", domain.RoleUser)
	store.addUser("10000002", domain.RoleAdmin)
	require.NoError(t, notify.NotifyAll(ctx, "t", "c"))
	require.Equal(t, "10000002", singleSender(t, store))

	// Нет и администратора - первый пользователь
	store, notify, _ = newNotifyFixture(t, "admin")
	store.addUser("10000001", domain.RoleUser)
	store.addUser("10000002", domain.RoleUser)
	require.NoError(t, notify.NotifyAll(ctx, "t", "c"))
	require.Equal(t, "10000001", singleSender(t, store))
}

func singleSender(t *testing.T, store *memStore) string {
	t.Helper()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.messages, 1)
	for _, m := range store.messages {
		return m.Sender
	}
	return ""
}
