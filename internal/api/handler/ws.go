package handler

import (
	"net/http"

	"nagarseva/backend/internal/push"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the reporter with the
// push hub for live lifecycle notifications.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	reporterID, ok := reporterFromRequest(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing or invalid"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := push.NewWebSocketClient(reporterID, conn, h.Hub)

	// The hub starts the client's pumps once it is registered.
	h.Hub.RegisterCh <- client
}
