package ws

import (
	"sync"

	"agri_chat/pkg/logger"
)

// Registry - общепроцессная карта username -> множество живых каналов.
// Регистр не источник авторизации: членство в комнатах всегда читается из
// хранилища, присутствие здесь означает только открытое соединение.
type Registry struct {
	log logger.Logger

	mu       sync.RWMutex
	sessions map[string]map[Channel]struct{}
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		log:      log,
		sessions: make(map[string]map[Channel]struct{}),
	}
}

func (r *Registry) Register(username string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[username]
	if !ok {
		set = make(map[Channel]struct{})
		r.sessions[username] = set
	}
	set[ch] = struct{}{}

	r.log.Info("WS connected", "username", username, "sessions", len(set))
}

// Unregister удаляет канал; пустая запись пользователя убирается целиком
func (r *Registry) Unregister(username string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[username]
	if !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(r.sessions, username)
	}

	r.log.Info("WS disconnected", "username", username, "sessions", len(set))
}

// Channels возвращает снимок каналов пользователя: рассылка идёт по копии,
// не удерживая блокировку на время записи в сокеты
func (r *Registry) Channels(username string) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sessions[username]
	if !ok {
		return nil
	}
	channels := make([]Channel, 0, len(set))
	for ch := range set {
		channels = append(channels, ch)
	}
	return channels
}

// OnlineUsers - количество пользователей хотя бы с одним живым каналом
func (r *Registry) OnlineUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll закрывает все каналы при остановке сервера
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for username, set := range r.sessions {
		for ch := range set {
			_ = ch.Close()
		}
		delete(r.sessions, username)
	}
}
