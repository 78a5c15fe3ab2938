// Package websocket feeds the debug dashboard: every event published on
// the daemon's internal event bus is broadcast to connected browser
// clients. It is read-only — there is no path from a websocket message
// back into the scheduler or State Store.
package websocket

import (
	"sync"

	"github.com/pueued/pueue-go/internal/events"
	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/metrics"
)

// Hub fans events.Event out to every connected dashboard client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan events.Event
	register   chan *Client
	unregister chan *Client
	bus        *events.Bus
	busSubID   int
	mu         sync.RWMutex
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan events.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bus:        bus,
		stopCh:     make(chan struct{}),
	}
}

// Run subscribes to the event bus and starts the hub's dispatch loop in
// background goroutines, then returns; the loop runs until Stop is called.
func (h *Hub) Run() {
	id, ch := h.bus.Subscribe()
	h.busSubID = id

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.stopCh:
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				select {
				case h.broadcast <- evt:
				default:
					logger.WithComponent("api.websocket").Warn().Msg("broadcast channel full, dropping event")
				}
			}
		}
	}()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.stopCh:
				h.closeAllClients()
				return
			case client := <-h.register:
				h.mu.Lock()
				h.clients[client] = true
				h.mu.Unlock()
				metrics.SetWebSocketConnections(float64(h.ClientCount()))
				logger.WithComponent("api.websocket").Debug().Str("client_id", client.ID).Msg("client registered")

			case client := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					close(client.send)
				}
				h.mu.Unlock()
				metrics.SetWebSocketConnections(float64(h.ClientCount()))
				logger.WithComponent("api.websocket").Debug().Str("client_id", client.ID).Msg("client unregistered")

			case evt := <-h.broadcast:
				h.broadcastEvent(evt)
			}
		}
	}()

	logger.WithComponent("api.websocket").Info().Msg("dashboard hub started")
}

// Stop stops the hub and unsubscribes from the event bus.
func (h *Hub) Stop() {
	h.bus.Unsubscribe(h.busSubID)
	close(h.stopCh)
	h.wg.Wait()
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastEvent(evt events.Event) {
	data, err := evt.ToJSON()
	if err != nil {
		logger.WithComponent("api.websocket").Error().Err(err).Msg("failed to serialize event for broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
			metrics.RecordWebSocketMessage(string(evt.Type))
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
