package handlers

import (
	"fmt"
	"syscall"
	"time"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/task"
)

// Add appends a new task to the store. The scheduler picks it up on its
// next tick; StartImmediately has no special handling beyond that — it
// merely documents the caller's intent, since the scheduler already
// admits every Queued task as soon as a slot is free.
func (d *Dispatcher) Add(req *AddRequest) Reply {
	if req.Command == "" {
		return errReply("command is required")
	}
	group := req.Group
	if group == "" {
		group = task.DefaultGroup
	}

	t := task.New(req.Command, req.Path, req.Envs, group)
	t.Label = req.Label
	t.Dependencies = req.Dependencies
	t.Priority = req.Priority

	if req.EnqueueAt != nil {
		at := time.Unix(*req.EnqueueAt, 0)
		if err := task.NewStateMachine(t).Stash(&at); err != nil {
			return errReply(err.Error())
		}
	}

	added, err := d.Store.AddTask(t)
	if err != nil {
		return errReply(err.Error())
	}

	logger.WithTask(added.ID).Info().Str("command", added.Command).Msg("task added")
	return Reply{Kind: TaskList, Tasks: []*task.Task{added}}
}

// Remove drops finished tasks from the store. Non-existent or still-live
// ids are reported as per-id failures; the rest are still removed.
func (d *Dispatcher) Remove(req *RemoveRequest) Reply {
	failures := make(map[int64]string)
	var removed []int64

	for _, id := range req.TaskIDs {
		if err := d.Store.RemoveTask(id); err != nil {
			failures[id] = err.Error()
			continue
		}
		removed = append(removed, id)
	}

	reply := ack(fmt.Sprintf("removed %d task(s)", len(removed)))
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

// Kill signals matching running tasks, defaulting to SIGTERM unless the
// caller specified one.
func (d *Dispatcher) Kill(req *KillRequest) Reply {
	ids, failures := d.resolveSelector(req.Selector)
	sig := syscall.SIGTERM
	if req.Signal != nil {
		sig = *req.Signal
	}

	for _, id := range ids {
		t, err := d.Store.GetTask(id)
		if err != nil {
			failures[id] = err.Error()
			continue
		}
		if !t.Status.IsActive() {
			continue
		}
		if err := d.Supervisor.Signal(id, sig, true); err != nil {
			failures[id] = err.Error()
		}
	}

	reply := ack(fmt.Sprintf("signaled %d task(s)", len(ids)-len(failures)))
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

// Pause stops every running task the selector resolves to, or pauses a
// whole group (blocking future admission) when Selector.Group is set with
// no explicit ids.
func (d *Dispatcher) Pause(req *PauseRequest) Reply {
	if req.Selector.Group != "" && !req.Selector.All && len(req.Selector.TaskIDs) == 0 {
		if err := d.Store.MutateGroup(req.Selector.Group, func(g *task.Group) error {
			g.Status = task.GroupPaused
			return nil
		}); err != nil {
			return errReply(err.Error())
		}
	}

	ids, failures := d.resolveSelector(req.Selector)
	for _, id := range ids {
		t, err := d.Store.GetTask(id)
		if err != nil || t.Status.Kind != task.Running {
			continue
		}
		if err := d.Supervisor.Pause(id); err != nil {
			failures[id] = err.Error()
			continue
		}
		if err := d.Store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Pause()
		}); err != nil {
			failures[id] = err.Error()
		}
	}

	reply := ack("paused")
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

// Start resumes every paused task the selector resolves to, or resumes a
// whole group's admission.
func (d *Dispatcher) Start(req *StartRequest) Reply {
	if req.Selector.Group != "" && !req.Selector.All && len(req.Selector.TaskIDs) == 0 {
		if err := d.Store.MutateGroup(req.Selector.Group, func(g *task.Group) error {
			g.Status = task.GroupRunning
			return nil
		}); err != nil {
			return errReply(err.Error())
		}
	}

	ids, failures := d.resolveSelector(req.Selector)
	for _, id := range ids {
		t, err := d.Store.GetTask(id)
		if err != nil || t.Status.Kind != task.Paused {
			continue
		}
		if err := d.Supervisor.Resume(id); err != nil {
			failures[id] = err.Error()
			continue
		}
		if err := d.Store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Resume()
		}); err != nil {
			failures[id] = err.Error()
		}
	}

	reply := ack("started")
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

// Stash moves Queued tasks to Stashed, optionally with a delayed
// enqueue_at. Enqueue is its inverse.
func (d *Dispatcher) Stash(req *StashRequest) Reply {
	var at *time.Time
	if req.EnqueueAt != nil {
		t := time.Unix(*req.EnqueueAt, 0)
		at = &t
	}

	failures := make(map[int64]string)
	for _, id := range req.TaskIDs {
		if err := d.Store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Stash(at)
		}); err != nil {
			failures[id] = err.Error()
		}
	}

	reply := ack("stashed")
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

func (d *Dispatcher) Enqueue(req *EnqueueRequest) Reply {
	failures := make(map[int64]string)
	for _, id := range req.TaskIDs {
		if err := d.Store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Enqueue()
		}); err != nil {
			failures[id] = err.Error()
		}
	}

	reply := ack("enqueued")
	if len(failures) > 0 {
		reply.Failures = failures
	}
	return reply
}

// Switch swaps the command, path and envs of two non-running tasks,
// leaving their ids, groups and dependencies untouched.
func (d *Dispatcher) Switch(req *SwitchRequest) Reply {
	a, err := d.Store.GetTask(req.TaskIDA)
	if err != nil {
		return errReply(err.Error())
	}
	b, err := d.Store.GetTask(req.TaskIDB)
	if err != nil {
		return errReply(err.Error())
	}
	if a.Status.IsActive() || b.Status.IsActive() {
		return errReply("cannot switch a running task")
	}

	err = d.Store.MutateTask(req.TaskIDA, func(t *task.Task) error {
		t.Command, t.Path, t.Envs = b.Command, b.Path, b.Envs
		return nil
	})
	if err != nil {
		return errReply(err.Error())
	}
	err = d.Store.MutateTask(req.TaskIDB, func(t *task.Task) error {
		t.Command, t.Path, t.Envs = a.Command, a.Path, a.Envs
		return nil
	})
	if err != nil {
		return errReply(err.Error())
	}

	return ack(fmt.Sprintf("switched tasks %d and %d", req.TaskIDA, req.TaskIDB))
}

// Edit implements the cooperative two-phase edit protocol. A first call
// with Accept=false locks the task (transitioning it to Locked if it is
// Queued or Stashed so the scheduler won't admit it mid-edit) and returns
// its current command/path/label. A second call with Accept=true applies
// the caller's edits and unlocks it back to Queued.
func (d *Dispatcher) Edit(req *EditRequest) Reply {
	t, err := d.Store.GetTask(req.TaskID)
	if err != nil {
		return errReply(err.Error())
	}

	if !req.Accept {
		if t.Status.IsActive() || t.Status.IsDone() {
			return errReply("task cannot be edited in its current status")
		}
		if err := d.Store.MutateTask(req.TaskID, func(t *task.Task) error {
			return task.NewStateMachine(t).Lock()
		}); err != nil {
			return errReply(err.Error())
		}
		return Reply{Kind: EditSnapshot, Edit: &EditRequest{
			TaskID:  t.ID,
			Command: t.Command,
			Path:    t.Path,
			Label:   t.Label,
		}}
	}

	err = d.Store.MutateTask(req.TaskID, func(t *task.Task) error {
		if req.Command != "" {
			t.Command = req.Command
		}
		if req.Path != "" {
			t.Path = req.Path
		}
		if req.Label != "" {
			t.Label = req.Label
		}
		if t.Status.Kind == task.Locked {
			return task.NewStateMachine(t).Enqueue()
		}
		return nil
	})
	if err != nil {
		return errReply(err.Error())
	}
	return ack(fmt.Sprintf("task %d updated", req.TaskID))
}
