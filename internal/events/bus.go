package events

import (
	"sync"
	"time"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/task"
)

// Bus is an in-process fan-out of Events to any number of subscribers. It
// implements store.Notifier (TaskChanged/GroupChanged) by structural
// typing, so the store package never needs to import events.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new listener with a small buffer. The caller must
// Unsubscribe when done to avoid leaking the channel and goroutine state.
func (b *Bus) Subscribe() (id int, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id = b.nextID
	c := make(chan Event, 64)
	b.subs[id] = c
	return id, c
}

func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.subs[id]; ok {
		close(c)
		delete(b.subs, id)
	}
}

// publish fans evt out to every subscriber without blocking; a slow or
// stuck subscriber drops events instead of stalling the State Store.
func (b *Bus) publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, c := range b.subs {
		select {
		case c <- evt:
		default:
			logger.WithComponent("events").Warn().Int("subscriber", id).Msg("dropped event, subscriber channel full")
		}
	}
}

// TaskChanged implements store.Notifier.
func (b *Bus) TaskChanged(t *task.Task) {
	b.publish(Event{Type: EventTaskChanged, Timestamp: time.Now(), Task: t})
}

// GroupChanged implements store.Notifier.
func (b *Bus) GroupChanged(g *task.Group) {
	b.publish(Event{Type: EventGroupChanged, Timestamp: time.Now(), Group: g})
}

// Ready publishes a daemon-startup marker to every bus subscriber.
func (b *Bus) Ready() {
	b.publish(Event{Type: EventDaemonReady, Timestamp: time.Now()})
}

// ShuttingDown publishes a daemon-shutdown marker.
func (b *Bus) ShuttingDown() {
	b.publish(Event{Type: EventDaemonExit, Timestamp: time.Now()})
}
