package handlers

import (
	"time"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/metrics"
	"github.com/pueued/pueue-go/internal/store"
	"github.com/pueued/pueue-go/internal/supervisor"
)

// Dispatcher holds the daemon-wide dependencies every handler needs and
// wraps each call with structured logging, panic recovery and metrics —
// generalized from the teacher's chi middleware chain to the socket
// transport, which has no middleware stack of its own to hang this on.
type Dispatcher struct {
	Store      *store.Store
	Supervisor *supervisor.Supervisor
	LogDir     string
}

func NewDispatcher(st *store.Store, sv *supervisor.Supervisor, logDir string) *Dispatcher {
	return &Dispatcher{Store: st, Supervisor: sv, LogDir: logDir}
}

// Dispatch routes req to its handler by concrete type. Unrecognized
// request types produce an ErrorReply rather than a panic.
func (d *Dispatcher) Dispatch(requestType string, req interface{}) (reply Reply) {
	start := time.Now()
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(requestType).Error().Interface("panic", r).Msg("recovered from panic in request handler")
			reply = errReply("internal error")
			outcome = "panic"
		}
		metrics.RecordRequest(requestType, outcome, time.Since(start).Seconds())
	}()

	reply = d.route(req)
	if reply.Kind == ErrorReply {
		outcome = "error"
	}
	return reply
}

func (d *Dispatcher) route(req interface{}) Reply {
	switch r := req.(type) {
	case *AddRequest:
		return d.Add(r)
	case *RemoveRequest:
		return d.Remove(r)
	case *KillRequest:
		return d.Kill(r)
	case *PauseRequest:
		return d.Pause(r)
	case *StartRequest:
		return d.Start(r)
	case *StashRequest:
		return d.Stash(r)
	case *EnqueueRequest:
		return d.Enqueue(r)
	case *SwitchRequest:
		return d.Switch(r)
	case *EditRequest:
		return d.Edit(r)
	case *GroupRequest:
		return d.Group(r)
	case *CleanRequest:
		return d.Clean(r)
	case *ResetRequest:
		return d.Reset(r)
	case *StatusRequest:
		return d.Status(r)
	case *LogRequest:
		return d.Log(r)
	default:
		return errReply("unrecognized request type")
	}
}

// resolveSelector expands sel against the current task set. Unknown
// explicit ids are reported in failures but do not prevent the rest of
// the selection from resolving.
func (d *Dispatcher) resolveSelector(sel Selector) (ids []int64, failures map[int64]string) {
	failures = make(map[int64]string)

	if sel.All {
		for _, t := range d.Store.Tasks() {
			ids = append(ids, t.ID)
		}
		return ids, failures
	}

	if sel.Group != "" {
		for _, t := range d.Store.Tasks() {
			if t.Group == sel.Group {
				ids = append(ids, t.ID)
			}
		}
		return ids, failures
	}

	for _, id := range sel.TaskIDs {
		if _, err := d.Store.GetTask(id); err != nil {
			failures[id] = err.Error()
			continue
		}
		ids = append(ids, id)
	}
	return ids, failures
}
