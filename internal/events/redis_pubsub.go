package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pueued/pueue-go/internal/logger"
)

const channelPrefix = "pueue:events:"

// RedisMirror republishes every event it is handed to a Redis Pub/Sub
// channel, for external dashboards that want to observe the daemon
// without holding a socket connection open. It never feeds back into the
// daemon: there is no subscribe-side wiring into the scheduler or state
// store, by design (distributed execution across hosts is explicitly out
// of scope).
type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

// Run drains ch, publishing each event to Redis, until ch is closed or ctx
// is cancelled. Intended to be launched as its own goroutine, fed by a
// Bus subscription.
func (m *RedisMirror) Run(ctx context.Context, ch <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := m.publish(ctx, evt); err != nil {
				logger.WithComponent("events.redis_mirror").Warn().Err(err).Msg("failed to mirror event to redis")
			}
		}
	}
}

func (m *RedisMirror) publish(ctx context.Context, evt Event) error {
	data, err := evt.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}
	channel := channelPrefix + string(evt.Type)
	return m.client.Publish(ctx, channel, data).Err()
}
