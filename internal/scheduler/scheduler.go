// Package scheduler runs the daemon's tick loop: reaping finished
// processes, promoting due Stashed tasks, checking dependency gates and
// admitting Queued tasks into their group's parallel slots.
package scheduler

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/metrics"
	"github.com/pueued/pueue-go/internal/store"
	"github.com/pueued/pueue-go/internal/supervisor"
	"github.com/pueued/pueue-go/internal/task"
)

// Scheduler owns the periodic tick that moves tasks through their
// lifecycle. Only one tick runs at a time; a tick that is still running
// when the next one fires is skipped rather than overlapped.
type Scheduler struct {
	store      *store.Store
	supervisor *supervisor.Supervisor
	policy     *RestartPolicy
	logDir     string
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	ticking    sync.Mutex
}

func New(st *store.Store, sv *supervisor.Supervisor, logDir string, interval time.Duration, policy *RestartPolicy) *Scheduler {
	if policy == nil {
		policy = DefaultRestartPolicy()
	}
	return &Scheduler{
		store:      st,
		supervisor: sv,
		policy:     policy,
		logDir:     logDir,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the tick loop in its own goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	logger.WithComponent("scheduler").Info().Dur("interval", s.interval).Msg("scheduler started")
}

// Stop halts the tick loop and waits for the in-flight tick, if any, to
// finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	logger.WithComponent("scheduler").Info().Msg("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one scheduling pass. It never overlaps itself: if a prior tick
// is still in flight (e.g. the State Store's disk write stalled), this
// tick is skipped entirely rather than queued.
func (s *Scheduler) tick() {
	if !s.ticking.TryLock() {
		return
	}
	defer s.ticking.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.SchedulerPanicsTotal.Inc()
			logger.WithComponent("scheduler").Error().Interface("panic", r).Msg("recovered from panic in scheduler tick")
		}
		metrics.RecordSchedulerTick(time.Since(start).Seconds())
	}()

	s.reapExits()
	s.promoteStashed()
	s.admit()
}

// reapExits drains every exit the supervisor has queued since the last
// tick and finalizes the corresponding task, applying the restart policy
// when the daemon is configured to retry.
func (s *Scheduler) reapExits() {
	for {
		select {
		case evt := <-s.supervisor.Exits():
			s.finishTask(evt.TaskID, evt.Result)
		default:
			return
		}
	}
}

func (s *Scheduler) finishTask(id int64, result task.Result) {
	err := s.store.MutateTask(id, func(t *task.Task) error {
		if result.Kind != task.Success && s.policy.ShouldRestart(t) && t.Restarts < s.policy.MaxAttempts {
			at := s.policy.NextRestartTime(t)
			return task.NewStateMachine(t).RestartWithDelay(at)
		}
		return task.NewStateMachine(t).Finish(result)
	})
	if err != nil {
		logger.WithTask(id).Warn().Err(err).Msg("failed to finalize exited task")
	}
}

// promoteStashed moves every Stashed task whose enqueue_at has elapsed
// back to Queued.
func (s *Scheduler) promoteStashed() {
	now := time.Now()
	for _, t := range s.store.Tasks() {
		if t.Status.Kind != task.Stashed {
			continue
		}
		if t.Status.EnqueueAt != nil && t.Status.EnqueueAt.After(now) {
			continue
		}
		id := t.ID
		if err := s.store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Enqueue()
		}); err != nil {
			logger.WithTask(id).Warn().Err(err).Msg("failed to promote stashed task")
		}
	}
}

// admit walks Queued tasks in id order (oldest first) and starts as many
// as each task's group has free parallel slots for (Running and Paused
// tasks both occupy a slot), after checking dependency gates. A task whose
// dependencies are still pending is locked; one whose dependency failed is
// finished as Done{DependencyFailed}. Locked tasks are re-evaluated every
// tick.
func (s *Scheduler) admit() {
	tasks := s.store.Tasks()
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	groups := make(map[string]*task.Group)
	for _, g := range s.store.Groups() {
		groups[g.Name] = g
	}

	running := make(map[string]int)
	for _, t := range tasks {
		if t.Status.IsActive() {
			running[t.Group]++
		}
	}

	done := s.store.DoneResults()

	for _, t := range tasks {
		switch t.Status.Kind {
		case task.Locked:
			s.reevaluateLocked(t, done)
		case task.Queued:
			s.maybeAdmit(t, groups, running, done)
		}
	}
}

func (s *Scheduler) reevaluateLocked(t *task.Task, done map[int64]task.Result) {
	satisfied, failed := t.DependenciesSatisfied(done)
	if failed {
		id := t.ID
		if err := s.store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Finish(task.DependencyFailedResult())
		}); err != nil {
			logger.WithTask(id).Warn().Err(err).Msg("failed to fail locked task on dependency failure")
		}
		return
	}
	if satisfied {
		id := t.ID
		if err := s.store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Enqueue()
		}); err != nil {
			logger.WithTask(id).Warn().Err(err).Msg("failed to unlock task")
		}
	}
}

func (s *Scheduler) maybeAdmit(t *task.Task, groups map[string]*task.Group, running map[string]int, done map[int64]task.Result) {
	satisfied, failed := t.DependenciesSatisfied(done)
	if failed {
		id := t.ID
		if err := s.store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Finish(task.DependencyFailedResult())
		}); err != nil {
			logger.WithTask(id).Warn().Err(err).Msg("failed to fail task on dependency failure")
		}
		return
	}
	if !satisfied {
		id := t.ID
		if err := s.store.MutateTask(id, func(t *task.Task) error {
			return task.NewStateMachine(t).Lock()
		}); err != nil {
			logger.WithTask(id).Warn().Err(err).Msg("failed to lock task pending dependencies")
		}
		return
	}

	g, ok := groups[t.Group]
	if !ok || g.Status != task.GroupRunning {
		return
	}

	if !g.HasUnlimitedSlots() && running[t.Group] >= g.ParallelSlots {
		return
	}

	if err := s.spawn(t); err != nil {
		logger.WithTask(t.ID).Error().Err(err).Msg("failed to spawn task")
		return
	}
	running[t.Group]++
	metrics.RecordAdmission(t.Group)
}

func (s *Scheduler) spawn(t *task.Task) error {
	logPath := filepath.Join(s.logDir, fmt.Sprintf("%d.log", t.ID))

	if err := s.supervisor.Spawn(t.ID, t.Command, t.Path, t.Envs, logPath); err != nil {
		_ = s.store.MutateTask(t.ID, func(t *task.Task) error {
			return task.NewStateMachine(t).Finish(task.FailedToSpawnResult(err.Error()))
		})
		return err
	}

	return s.store.MutateTask(t.ID, func(t *task.Task) error {
		return task.NewStateMachine(t).Start()
	})
}
