package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agri_chat/internal/ws"
)

type HealthHandler struct {
	registry *ws.Registry
}

func NewHealthHandler(registry *ws.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"service":      "agri-chat",
		"online_users": h.registry.OnlineUsers(),
	})
}
