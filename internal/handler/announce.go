package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agri_chat/internal/service"
	"agri_chat/pkg/logger"
)

type AnnounceHandler struct {
	notifyService service.NotifyService
	log           logger.Logger
}

func NewAnnounceHandler(notifyService service.NotifyService, log logger.Logger) *AnnounceHandler {
	return &AnnounceHandler{
		notifyService: notifyService,
		log:           log,
	}
}

type AnnouncementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Publish рассылает объявление всем пользователям через комнату системных
// уведомлений
func (h *AnnounceHandler) Publish(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.notifyService.NotifyAll(c.Request.Context(), req.Title, req.Content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
