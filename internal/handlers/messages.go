// Package handlers implements one function per request the daemon
// accepts on its control socket, in the pure "(Message, *State) -> Reply"
// shape, wrapped by a thin dispatch layer for logging, panic recovery and
// metrics.
package handlers

import (
	"syscall"

	"github.com/pueued/pueue-go/internal/task"
)

// Selector resolves to a concrete task id set: every task, a whole group,
// or an explicit id list. Unknown ids in TaskIDs produce per-id failures
// while the rest of the selection still applies.
type Selector struct {
	All     bool     `json:"all,omitempty"`
	Group   string   `json:"group,omitempty"`
	TaskIDs []int64  `json:"task_ids,omitempty"`
}

type AddRequest struct {
	Command          string            `json:"command"`
	Path             string            `json:"path"`
	Envs             map[string]string `json:"envs,omitempty"`
	Group            string            `json:"group,omitempty"`
	Label            string            `json:"label,omitempty"`
	Dependencies     []int64           `json:"dependencies,omitempty"`
	Priority         int               `json:"priority,omitempty"`
	StartImmediately bool              `json:"start_immediately,omitempty"`
	EnqueueAt        *int64            `json:"enqueue_at,omitempty"` // unix seconds
}

type RemoveRequest struct {
	TaskIDs []int64 `json:"task_ids"`
}

type KillRequest struct {
	Selector Selector        `json:"selector"`
	Signal   *syscall.Signal `json:"signal,omitempty"`
}

type PauseRequest struct {
	Selector Selector `json:"selector"`
}

type StartRequest struct {
	Selector Selector `json:"selector"`
}

type StashRequest struct {
	TaskIDs   []int64 `json:"task_ids"`
	EnqueueAt *int64  `json:"enqueue_at,omitempty"`
}

type EnqueueRequest struct {
	TaskIDs []int64 `json:"task_ids"`
}

type SwitchRequest struct {
	TaskIDA int64 `json:"task_id_a"`
	TaskIDB int64 `json:"task_id_b"`
}

// EditRequest implements the cooperative edit protocol: the client first
// sends one with Accept=false to receive the current command/path/label
// back in the Reply for local editing, then resends with Accept=true and
// the modified fields to apply and unlock the task.
type EditRequest struct {
	TaskID  int64  `json:"task_id"`
	Accept  bool   `json:"accept"`
	Command string `json:"command,omitempty"`
	Path    string `json:"path,omitempty"`
	Label   string `json:"label,omitempty"`
}

type GroupRequest struct {
	Add    string `json:"add,omitempty"`
	Remove string `json:"remove,omitempty"`
	Pause  string `json:"pause,omitempty"`
	Start  string `json:"start,omitempty"`
	Modify string `json:"modify,omitempty"` // name of an existing group whose Slots should change
	Slots  *int   `json:"slots,omitempty"`  // with Add, or with Modify to set_group_parallel
}

type CleanRequest struct {
	Group        string `json:"group,omitempty"`
	SuccessOnly  bool   `json:"success_only,omitempty"`
}

type ResetRequest struct{}

type StatusRequest struct {
	Query []string `json:"query,omitempty"`
}

type LogRequest struct {
	TaskIDs []int64 `json:"task_ids,omitempty"`
	Lines   int     `json:"lines,omitempty"`
}

type StreamLogRequest struct {
	TaskID int64 `json:"task_id"`
}

// ReplyKind discriminates which fields of Reply are meaningful, the same
// tagged-union idiom used by task.Status.
type ReplyKind int

const (
	Ack ReplyKind = iota
	ErrorReply
	TaskList
	GroupList
	EditSnapshot
	LogLines
)

type LogEntry struct {
	TaskID int64  `json:"task_id"`
	Data   []byte `json:"data"`
}

// Reply is the daemon's response to any request. Only the fields that
// apply to Kind are populated; Failures carries per-id errors for
// selector-based requests where some ids succeeded and others did not.
type Reply struct {
	Kind     ReplyKind        `json:"kind"`
	Message  string           `json:"message,omitempty"`
	Tasks    []*task.Task     `json:"tasks,omitempty"`
	Groups   []*task.Group    `json:"groups,omitempty"`
	Edit     *EditRequest     `json:"edit,omitempty"`
	Logs     []LogEntry       `json:"logs,omitempty"`
	Failures map[int64]string `json:"failures,omitempty"`
}

func ack(message string) Reply { return Reply{Kind: Ack, Message: message} }
func errReply(message string) Reply { return Reply{Kind: ErrorReply, Message: message} }
