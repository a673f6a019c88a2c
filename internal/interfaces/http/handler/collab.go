package handler

import (
	"strings"

	"github.com/appforge/backend/internal/infrastructure/logger"
	"github.com/appforge/backend/internal/infrastructure/realtime"
	"github.com/appforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxRoomLength = 64
	maxNameLength = 64
)

// CollabHandler upgrades browser connections into collaboration rooms
type CollabHandler struct {
	BaseHandler
	hub      *realtime.Hub
	upgrader *websocket.Upgrader
}

// NewCollabHandler creates a new CollabHandler
func NewCollabHandler(hub *realtime.Hub, allowedOrigins []string) *CollabHandler {
	return &CollabHandler{hub: hub, upgrader: realtime.NewUpgrader(allowedOrigins)}
}

// Join handles GET /ws/collab/:room
func (h *CollabHandler) Join(c *gin.Context) {
	room := strings.TrimSpace(c.Param("room"))
	if room == "" || len(room) > maxRoomLength {
		h.BadRequest(c, "Invalid room")
		return
	}

	name := strings.TrimSpace(c.Query("name"))
	if len(name) > maxNameLength {
		h.BadRequest(c, "Invalid name")
		return
	}
	if claims := middleware.GetJWTClaims(c); claims != nil && claims.Name != "" {
		name = claims.Name
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the failure response
		logger.GetGinLogger(c).Info("WebSocket upgrade failed", zap.Error(err))
		c.Abort()
		return
	}
	h.hub.Serve(conn, room, name)
}
