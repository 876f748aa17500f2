package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"agri_chat/internal/service"
	"agri_chat/internal/ws"
	"agri_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	authService service.AuthService
	chatService service.ChatService
	registry    *ws.Registry
	pushTimeout time.Duration
	log         logger.Logger
}

func NewWebSocketHandler(
	authService service.AuthService,
	chatService service.ChatService,
	registry *ws.Registry,
	pushTimeout time.Duration,
	log logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		chatService: chatService,
		registry:    registry,
		pushTimeout: pushTimeout,
		log:         log,
	}
}

// inboundPayload - единственная форма входящего кадра; лишние поля
// игнорируются, личность отправителя всегда берётся из привязки канала
type inboundPayload struct {
	RoomID  int64  `json:"roomId"`
	Content string `json:"content"`
}

// HandleChat обслуживает одно websocket-соединение: личность привязывается
// при подключении и не меняется до закрытия канала
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	channel := ws.NewChannel(conn, h.pushTimeout)
	h.registry.Register(user.Username, channel)
	defer func() {
		h.registry.Unregister(user.Username, channel)
		_ = channel.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("WS read failed", "username", user.Username, "error", err)
			}
			return
		}

		var payload inboundPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			h.log.Warn("WS payload parse failed", "username", user.Username, "error", err)
			continue
		}
		if payload.RoomID == 0 || strings.TrimSpace(payload.Content) == "" {
			continue
		}

		// Персистентность и рассылка - один путь с REST-отправкой
		if _, err := h.chatService.SendMessage(c.Request.Context(), payload.RoomID, user, payload.Content); err != nil {
			h.log.Warn("WS message rejected", "username", user.Username, "room_id", payload.RoomID, "error", err)
		}
	}
}
