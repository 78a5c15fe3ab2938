package handlers

import (
	"time"

	"github.com/pueued/pueue-go/internal/metrics"
	"github.com/pueued/pueue-go/internal/query"
)

// Status returns a snapshot of the task set, run through the Query Engine
// when the request carries a query. This is the same pipeline the CLI's
// local format-status path uses against pre-serialized task JSON, so the
// daemon and the offline formatter never drift in behavior.
func (d *Dispatcher) Status(req *StatusRequest) Reply {
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	tasks := d.Store.Tasks()
	if len(req.Query) == 0 {
		return Reply{Kind: TaskList, Tasks: tasks}
	}

	plan, err := query.Parse(req.Query)
	if err != nil {
		return errReply(err.Error())
	}
	return Reply{Kind: TaskList, Tasks: query.Apply(tasks, plan)}
}
