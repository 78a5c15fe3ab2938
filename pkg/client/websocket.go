package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pueued/pueue-go/internal/events"
)

// DashboardClient subscribes to the daemon's debug dashboard websocket
// feed (internal/api/websocket) — a read-only stream of the event bus,
// distinct from the request/reply control socket that Client talks.
type DashboardClient struct {
	conn      *websocket.Conn
	debugAddr string
	evts      chan *events.Event
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	connected bool
}

// NewDashboardClient prepares a client for the debug HTTP surface at
// debugAddr (host:port, as configured under Debug.Addr). Connect must be
// called before Events starts producing anything.
func NewDashboardClient(debugAddr string) *DashboardClient {
	return &DashboardClient{
		debugAddr: debugAddr,
		evts:      make(chan *events.Event, 100),
		done:      make(chan struct{}),
	}
}

// Connect dials the dashboard websocket endpoint.
func (ws *DashboardClient) Connect(ctx context.Context) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.connected {
		return nil
	}

	u := url.URL{Scheme: "ws", Host: ws.debugAddr, Path: "/debug/ws"}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dashboard: websocket dial failed: %w", err)
	}

	ws.conn = conn
	ws.connected = true
	ws.done = make(chan struct{})

	go ws.readLoop()
	return nil
}

func (ws *DashboardClient) readLoop() {
	defer func() {
		ws.mu.Lock()
		ws.connected = false
		ws.mu.Unlock()
		close(ws.evts)
	}()

	for {
		select {
		case <-ws.done:
			return
		default:
			_, message, err := ws.conn.ReadMessage()
			if err != nil {
				return
			}

			var evt events.Event
			if err := json.Unmarshal(message, &evt); err != nil {
				continue
			}

			select {
			case ws.evts <- &evt:
			case <-ws.done:
				return
			default:
				select {
				case <-ws.evts:
				default:
				}
				ws.evts <- &evt
			}
		}
	}
}

// Events returns a channel of events as they arrive from the daemon.
func (ws *DashboardClient) Events() <-chan *events.Event {
	return ws.evts
}

// Close closes the websocket connection.
func (ws *DashboardClient) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.done)
		ws.mu.Lock()
		defer ws.mu.Unlock()
		if ws.conn != nil {
			err = ws.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			_ = ws.conn.Close()
		}
	})
	return err
}

// IsConnected reports whether the websocket is currently connected.
func (ws *DashboardClient) IsConnected() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.connected
}
