// Package store implements the daemon's State Store: the single
// exclusive-lock in-memory registry of tasks and groups, with atomic
// snapshot persistence to disk.
package store

import (
	"fmt"
	"sync"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/task"
)

// Notifier receives a callback from AddTask, MutateTask, AddGroup and
// MutateGroup, called while the store's lock is still held; RemoveTask,
// RemoveGroup, Clean and Reset do not notify. Implementations must not
// block; the event bus implementation hands events off to buffered channels.
type Notifier interface {
	TaskChanged(t *task.Task)
	GroupChanged(g *task.Group)
}

type noopNotifier struct{}

func (noopNotifier) TaskChanged(*task.Task)   {}
func (noopNotifier) GroupChanged(*task.Group) {}

// Store is the State Store. All reads and writes of tasks/groups go
// through its single mutex. Every mutating method writes and fsyncs the
// on-disk snapshot while holding the mutex.
type Store struct {
	mu       sync.Mutex
	path     string
	tasks    map[int64]*task.Task
	groups   map[string]*task.Group
	nextID   int64
	settings Settings
	notifier Notifier
}

// New creates an empty Store persisting to path. Call Load to recover a
// prior snapshot before starting the scheduler.
func New(path string) *Store {
	s := &Store{
		path:     path,
		tasks:    make(map[int64]*task.Task),
		groups:   make(map[string]*task.Group),
		notifier: noopNotifier{},
	}
	s.groups[task.DefaultGroup] = task.NewGroup(task.DefaultGroup, 0)
	return s
}

// SetNotifier wires an event sink. Must be called before the scheduler
// starts mutating the store if events are to be observed from the start.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

// Load restores a prior snapshot from disk. Any task found Running or
// Paused is rewritten to Done{Killed}: the daemon that owned its
// supervised child is gone, so the process tree (if it outlived the
// daemon) is no longer tracked and the task cannot be considered live.
func (s *Store) Load() error {
	snap, err := loadSnapshot(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = snap.Tasks
	if s.tasks == nil {
		s.tasks = make(map[int64]*task.Task)
	}
	s.groups = snap.Groups
	if s.groups == nil {
		s.groups = make(map[string]*task.Group)
	}
	if _, ok := s.groups[task.DefaultGroup]; !ok {
		s.groups[task.DefaultGroup] = task.NewGroup(task.DefaultGroup, 0)
	}
	s.nextID = snap.NextID
	s.settings = snap.Settings

	for _, t := range s.tasks {
		if t.Status.Kind == task.Running || t.Status.Kind == task.Paused {
			sm := task.NewStateMachine(t)
			_ = sm.Finish(task.KilledResult())
			logger.WithTask(t.ID).Warn().Msg("recovered task was running at daemon restart, marked killed")
		}
	}

	return nil
}

// persistLocked writes the current state to disk. Caller must hold s.mu.
func (s *Store) persistLocked() error {
	snap := snapshot{
		Tasks:    s.tasks,
		Groups:   s.groups,
		NextID:   s.nextID,
		Settings: s.settings,
	}
	data, err := marshalSnapshot(&snap)
	if err != nil {
		return err
	}
	return saveAtomic(s.path, data)
}

// AddTask assigns the next id to t, inserts it with the status it already
// carries and persists.
func (s *Store) AddTask(t *task.Task) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[t.Group]; !ok {
		return nil, fmt.Errorf("add task: %w: %s", task.ErrGroupNotFound, t.Group)
	}
	for _, dep := range t.Dependencies {
		if _, ok := s.tasks[dep]; !ok {
			return nil, fmt.Errorf("add task: dependency %d does not exist", dep)
		}
	}

	s.nextID++
	t.ID = s.nextID
	s.tasks[t.ID] = t

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.notifier.TaskChanged(t.Clone())
	return t, nil
}

// RemoveTask deletes a task by id. Running/Paused tasks must be killed by
// the caller first; RemoveTask itself never touches the supervisor.
func (s *Store) RemoveTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	if t.Status.IsActive() {
		return fmt.Errorf("remove task %d: task is %s, kill it first", id, t.Status.Kind)
	}
	delete(s.tasks, id)
	return s.persistLocked()
}

// GetTask returns a clone of the task with the given id.
func (s *Store) GetTask(id int64) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// Tasks returns a clone of every task, in no particular order; callers
// needing a stable order (e.g. the Query Engine) sort it themselves.
func (s *Store) Tasks() []*task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// DoneResults returns a map of task id to Result for every Done task,
// used by the scheduler to evaluate dependency gating.
func (s *Store) DoneResults() map[int64]task.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]task.Result)
	for id, t := range s.tasks {
		if t.Status.Kind == task.Done && t.Status.Result != nil {
			out[id] = *t.Status.Result
		}
	}
	return out
}

// MutateTask applies fn to the task with the given id under the store's
// lock, persists the result and notifies the event sink. fn receives the
// live task (not a clone) — it may inspect or replace its Status via a
// task.StateMachine, but must not retain the pointer past fn's return.
func (s *Store) MutateTask(id int64, fn func(t *task.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	if err := fn(t); err != nil {
		return err
	}
	if err := s.persistLocked(); err != nil {
		return err
	}
	s.notifier.TaskChanged(t.Clone())
	return nil
}

// AddGroup creates a new named group with the given parallel slot count.
func (s *Store) AddGroup(name string, slots int) (*task.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[name]; exists {
		return nil, fmt.Errorf("add group: group %q already exists", name)
	}
	g := task.NewGroup(name, slots)
	s.groups[name] = g
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	s.notifier.GroupChanged(g)
	return g, nil
}

// RemoveGroup deletes a group. The default group can never be removed, and
// a group with tasks still assigned to it cannot be removed either.
func (s *Store) RemoveGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == task.DefaultGroup {
		return fmt.Errorf("remove group: %s cannot be removed", task.DefaultGroup)
	}
	if _, ok := s.groups[name]; !ok {
		return task.ErrGroupNotFound
	}
	for _, t := range s.tasks {
		if t.Group == name {
			return task.ErrGroupNotEmpty
		}
	}
	delete(s.groups, name)
	return s.persistLocked()
}

// Groups returns every known group.
func (s *Store) Groups() []*task.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*task.Group, 0, len(s.groups))
	for _, g := range s.groups {
		gc := *g
		out = append(out, &gc)
	}
	return out
}

// GetGroup returns the named group.
func (s *Store) GetGroup(name string) (*task.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[name]
	if !ok {
		return nil, task.ErrGroupNotFound
	}
	gc := *g
	return &gc, nil
}

// MutateGroup applies fn to the named group under the store's lock.
func (s *Store) MutateGroup(name string, fn func(g *task.Group) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[name]
	if !ok {
		return task.ErrGroupNotFound
	}
	if err := fn(g); err != nil {
		return err
	}
	if err := s.persistLocked(); err != nil {
		return err
	}
	s.notifier.GroupChanged(g)
	return nil
}

// SetGroupParallel changes an existing group's parallel slot count without
// touching its running/paused status. Slots of 0 or less means unlimited.
func (s *Store) SetGroupParallel(name string, slots int) error {
	return s.MutateGroup(name, func(g *task.Group) error {
		g.ParallelSlots = slots
		return nil
	})
}

// Reset wipes every task and every non-default group, recreating default
// from scratch with unlimited slots. The id counter is kept, so ids are
// not reused after a reset. Callers are responsible for killing
// any live supervised processes first; Reset itself only touches the
// in-memory/on-disk registry.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[int64]*task.Task)
	s.groups = map[string]*task.Group{
		task.DefaultGroup: task.NewGroup(task.DefaultGroup, 0),
	}
	return s.persistLocked()
}

// Clean removes every Done task, optionally restricted to a single group.
// It returns the ids removed.
func (s *Store) Clean(group string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []int64
	for id, t := range s.tasks {
		if !t.Status.IsFinal() {
			continue
		}
		if group != "" && t.Group != group {
			continue
		}
		removed = append(removed, id)
		delete(s.tasks, id)
	}
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return removed, nil
}
