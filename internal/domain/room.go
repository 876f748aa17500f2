package domain

import (
	"time"
)

type Room struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	// Name - название группового чата, для личных комнат пустое
	Name string `json:"name,omitempty"`
	// Key - канонический уникальный ключ комнаты: для direct-комнат
	// отсортированная пара "a|b", для системной комнаты фиксированный
	// SystemRoomKey, для обычных групп nil. Уникальность колонки в БД
	// делает создание идемпотентным без блокировок.
	Key       *string   `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type Membership struct {
	ID       int64     `json:"id"`
	RoomID   int64     `json:"room_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

const (
	RoomTypeDirect = "direct"
	RoomTypeGroup  = "group"
)

const (
	// SystemRoomKey - ключ единственной комнаты системных уведомлений
	SystemRoomKey = "system"
	// SystemRoomName - отображаемое имя комнаты системных уведомлений
	SystemRoomName = "系统通知"
)

func (r *Room) IsSystem() bool {
	return r.Type == RoomTypeGroup && r.Key != nil && *r.Key == SystemRoomKey
}
