package handlers

import (
	"net/http"

	"rtr_earnings/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens before the upgrade; origin checks belong to the
	// reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Events upgrades the connection and streams ledger events to an admin
// dashboard until the client disconnects.
func (h *Handler) Events(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", "error", err)
		return
	}

	h.Hub.Serve(conn)
}
