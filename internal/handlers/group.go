package handlers

import (
	"fmt"
	"syscall"

	"github.com/pueued/pueue-go/internal/task"
)

// Group manages groups: add, remove, pause or start (resume admission
// for) one, or change one's parallel slots (Modify), or with none of
// those set, list every group — grounded on
// the original implementation's group message handler, which likewise
// branches on which optional field is set.
func (d *Dispatcher) Group(req *GroupRequest) Reply {
	if req.Add != "" {
		slots := 0
		if req.Slots != nil {
			slots = *req.Slots
		}
		g, err := d.Store.AddGroup(req.Add, slots)
		if err != nil {
			return errReply(err.Error())
		}
		return Reply{Kind: GroupList, Groups: []*task.Group{g}, Message: fmt.Sprintf("group %q created", g.Name)}
	}

	if req.Remove != "" {
		if err := d.Store.RemoveGroup(req.Remove); err != nil {
			return errReply(err.Error())
		}
		return ack(fmt.Sprintf("group %q removed", req.Remove))
	}

	if req.Pause != "" {
		if err := d.Store.MutateGroup(req.Pause, func(g *task.Group) error {
			g.Status = task.GroupPaused
			return nil
		}); err != nil {
			return errReply(err.Error())
		}
		return ack(fmt.Sprintf("group %q paused", req.Pause))
	}

	if req.Start != "" {
		if err := d.Store.MutateGroup(req.Start, func(g *task.Group) error {
			g.Status = task.GroupRunning
			return nil
		}); err != nil {
			return errReply(err.Error())
		}
		return ack(fmt.Sprintf("group %q started", req.Start))
	}

	if req.Modify != "" {
		if req.Slots == nil {
			return errReply("modify requires slots")
		}
		if err := d.Store.SetGroupParallel(req.Modify, *req.Slots); err != nil {
			return errReply(err.Error())
		}
		return ack(fmt.Sprintf("group %q parallel slots set to %d", req.Modify, *req.Slots))
	}

	if req.Slots != nil {
		return errReply("slots can only be set together with add or modify")
	}

	return Reply{Kind: GroupList, Groups: d.Store.Groups()}
}

// Clean drops every Done task, optionally restricted to one group and/or
// only those that finished successfully.
func (d *Dispatcher) Clean(req *CleanRequest) Reply {
	if !req.SuccessOnly {
		removed, err := d.Store.Clean(req.Group)
		if err != nil {
			return errReply(err.Error())
		}
		return ack(fmt.Sprintf("removed %d task(s)", len(removed)))
	}

	var failed int64
	for _, t := range d.Store.Tasks() {
		if req.Group != "" && t.Group != req.Group {
			continue
		}
		if !t.Status.IsFinal() {
			continue
		}
		if t.Status.Result.Kind != task.Success {
			failed++
			continue
		}
		_ = d.Store.RemoveTask(t.ID)
	}

	msg := "removed successful task(s)"
	if failed > 0 {
		msg = fmt.Sprintf("removed successful task(s), kept %d failed", failed)
	}
	return ack(msg)
}

// Reset kills every live task, then wipes all tasks and non-default
// groups, recreating the default group from scratch.
func (d *Dispatcher) Reset(req *ResetRequest) Reply {
	for _, t := range d.Store.Tasks() {
		if t.Status.IsActive() {
			_ = d.Supervisor.Signal(t.ID, syscall.SIGKILL, true)
		}
	}

	if err := d.Store.Reset(); err != nil {
		return errReply(err.Error())
	}

	return ack("daemon state reset")
}
