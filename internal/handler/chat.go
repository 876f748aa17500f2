package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agri_chat/internal/middleware"
	"agri_chat/internal/service"
	pkgerrors "agri_chat/pkg/errors"
	"agri_chat/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, userService service.UserService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		log:         log,
	}
}

type CreateDirectRoomRequest struct {
	Peer string `json:"peer" binding:"required"`
}

// CreateDirectRoom - идемпотентное создание личной комнаты с собеседником.
// Проверка "подтверждённые контакты" - обязанность этого уровня, сам сервис
// комнат её не навязывает.
func (h *ChatHandler) CreateDirectRoom(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateDirectRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	peer, err := h.userService.GetByUsername(c.Request.Context(), req.Peer)
	if err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": "peer not found"})
		return
	}

	friends, err := h.userService.AreFriends(c.Request.Context(), user, peer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "users are not contacts"})
		return
	}

	room, err := h.chatService.EnsureDirectRoom(c.Request.Context(), user, peer)
	if err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	info, err := h.chatService.RoomInfo(c.Request.Context(), room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

type CreateGroupRoomRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members"`
}

func (h *ChatHandler) CreateGroupRoom(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateGroupRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chatService.CreateGroupRoom(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	// Создатель и перечисленные пользователи становятся участниками;
	// неизвестные имена пропускаются
	if err := h.chatService.EnsureMember(c.Request.Context(), room, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, username := range req.Members {
		member, err := h.userService.GetByUsername(c.Request.Context(), username)
		if err != nil {
			continue
		}
		if err := h.chatService.EnsureMember(c.Request.Context(), room, member); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	info, err := h.chatService.RoomInfo(c.Request.Context(), room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	rooms, err := h.chatService.ListRooms(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// GetMessages возвращает последние limit сообщений по возрастанию времени;
// limit=0 - полная история
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	var messages any
	if limit == 0 {
		messages, err = h.chatService.GetHistory(c.Request.Context(), roomID)
	} else {
		messages, err = h.chatService.GetRecentMessages(c.Request.Context(), roomID, limit)
	}
	if err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), roomID, user, req.Content)
	if err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) RecallMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	msg, err := h.chatService.RecallMessage(c.Request.Context(), messageID, user)
	if err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	if err := h.chatService.DeleteMessage(c.Request.Context(), messageID, user); err != nil {
		c.JSON(pkgerrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
