package domain

import (
	"time"
)

// События живых каналов. Каждый вид события - отдельный тип с фиксированным
// набором полей; поле Type дублируется в JSON для клиента.
const (
	EventTypeMessage = "message"
	EventTypeRecall  = "recall"
	EventTypeDelete  = "delete"
)

type MessageEvent struct {
	Type       string    `json:"type"`
	ID         int64     `json:"id"`
	RoomID     int64     `json:"roomId"`
	Sender     string    `json:"sender"`
	SenderInfo UserBrief `json:"senderInfo"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type RecallEvent struct {
	Type      string    `json:"type"`
	RoomID    int64     `json:"roomId"`
	MessageID int64     `json:"messageId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeleteEvent struct {
	Type      string `json:"type"`
	RoomID    int64  `json:"roomId"`
	MessageID int64  `json:"messageId"`
}

func NewMessageEvent(msg *ChatMessage) MessageEvent {
	return MessageEvent{
		Type:       EventTypeMessage,
		ID:         msg.ID,
		RoomID:     msg.RoomID,
		Sender:     msg.Sender,
		SenderInfo: msg.SenderInfo,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
}

func NewRecallEvent(msg *ChatMessage) RecallEvent {
	return RecallEvent{
		Type:      EventTypeRecall,
		RoomID:    msg.RoomID,
		MessageID: msg.ID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func NewDeleteEvent(roomID, messageID int64) DeleteEvent {
	return DeleteEvent{
		Type:      EventTypeDelete,
		RoomID:    roomID,
		MessageID: messageID,
	}
}
