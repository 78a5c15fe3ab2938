// Package events implements the daemon's in-process event bus: task and
// group additions and mutations in the State Store are published here
// (from inside the store's lock), and fanned out to metrics, the debug HTTP mirror, the
// dashboard websocket hub, and (optionally) an external Redis Pub/Sub
// mirror. None of these subscribers can affect how a request is handled;
// the bus is purely observational.
package events

import (
	"encoding/json"
	"time"

	"github.com/pueued/pueue-go/internal/task"
)

type EventType string

const (
	EventTaskChanged  EventType = "task.changed"
	EventGroupChanged EventType = "group.changed"
	EventDaemonReady  EventType = "daemon.ready"
	EventDaemonExit   EventType = "daemon.shutting_down"
)

// Event is a single notification carried on the bus. Only the field
// matching Type is populated.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Task      *task.Task  `json:"task,omitempty"`
	Group     *task.Group `json:"group,omitempty"`
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
