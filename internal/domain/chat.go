package domain

import (
	"time"
)

type ChatMessage struct {
	ID       int64 `json:"id"`
	RoomID   int64 `json:"roomId"`
	SenderID int64 `json:"-"`
	// Sender и SenderInfo заполняются join-ом с users при чтении
	Sender     string    `json:"sender"`
	SenderInfo UserBrief `json:"senderInfo"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	// MaxContentLength - лимит длины сообщения (размер колонки content)
	MaxContentLength = 2000

	// RecallPlaceholder заменяет содержимое отозванного сообщения
	RecallPlaceholder = "此消息已撤回"

	// SystemNoticePrefix - префикс текста системного уведомления
	SystemNoticePrefix = "【系统通知】"
)
