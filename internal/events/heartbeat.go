package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pueued/pueue-go/internal/logger"
)

const (
	heartbeatKey     = "pueue:daemon:heartbeat"
	heartbeatTimeout = 30 * time.Second
)

// Heartbeat periodically refreshes a TTL'd liveness key in Redis so an
// external dashboard watching the mirror can tell the daemon is still
// alive, as opposed to having simply stopped emitting events. There is
// only ever one daemon to track (no worker registry, unlike a distributed
// pool), so this is a single key rather than a set of worker ids.
type Heartbeat struct {
	client   *redis.Client
	interval time.Duration
	stopCh   chan struct{}
}

func NewHeartbeat(client *redis.Client, interval time.Duration) *Heartbeat {
	return &Heartbeat{client: client, interval: interval, stopCh: make(chan struct{})}
}

func (h *Heartbeat) Start(ctx context.Context) {
	go h.loop(ctx)
}

func (h *Heartbeat) Stop() {
	close(h.stopCh)
}

func (h *Heartbeat) loop(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.beat(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	if err := h.client.Set(ctx, heartbeatKey, time.Now().Unix(), heartbeatTimeout).Err(); err != nil {
		logger.WithComponent("events.heartbeat").Warn().Err(err).Msg("failed to refresh daemon heartbeat")
	}
}
