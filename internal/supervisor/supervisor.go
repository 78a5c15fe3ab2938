// Package supervisor owns live OS child processes. Every spawned task is
// started as the leader of its own process group (SysProcAttr.Setpgid) so
// that a single signal, delivered to the negative pid, reaches every
// descendant the task's shell may have forked — mirroring how Pueue's own
// process_helper keeps a task's process tree containable.
package supervisor

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/metrics"
	"github.com/pueued/pueue-go/internal/task"
)

// ExitEvent is delivered on the Supervisor's Exits channel once a
// supervised task's process tree leader has exited.
type ExitEvent struct {
	TaskID int64
	Result task.Result
}

// Supervisor tracks one live process per running task id.
type Supervisor struct {
	mu        sync.Mutex
	processes map[int64]*process
	exitCh    chan ExitEvent
}

func New() *Supervisor {
	return &Supervisor{
		processes: make(map[int64]*process),
		exitCh:    make(chan ExitEvent, 256),
	}
}

// Exits is the channel the scheduler drains on each tick to learn which
// tasks have finished since the last reap.
func (s *Supervisor) Exits() <-chan ExitEvent {
	return s.exitCh
}

// Spawn starts command as a new process group leader and begins tracking
// it under taskID. It returns as soon as the process has started; the
// process's eventual exit arrives asynchronously on Exits().
func (s *Supervisor) Spawn(taskID int64, command, dir string, envs map[string]string, logPath string) error {
	p, err := spawn(command, dir, envs, logPath)
	if err != nil {
		metrics.SupervisorSpawnTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.SupervisorSpawnTotal.WithLabelValues("ok").Inc()

	s.mu.Lock()
	s.processes[taskID] = p
	s.mu.Unlock()

	go s.awaitExit(taskID, p)
	return nil
}

func (s *Supervisor) awaitExit(taskID int64, p *process) {
	result := p.wait()

	s.mu.Lock()
	delete(s.processes, taskID)
	s.mu.Unlock()

	logger.WithTask(taskID).Info().Str("result", result.Kind.String()).Msg("task process exited")
	s.exitCh <- ExitEvent{TaskID: taskID, Result: result}
}

func (s *Supervisor) lookup(taskID int64) (*process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.processes[taskID]
	return p, ok
}

// IsSupervised reports whether taskID currently has a live tracked
// process (i.e. is Running or Paused from the supervisor's point of view).
func (s *Supervisor) IsSupervised(taskID int64) bool {
	_, ok := s.lookup(taskID)
	return ok
}

// Signal delivers sig to the task's process. toGroup sends it to the
// whole process group; otherwise only the direct child receives it.
func (s *Supervisor) Signal(taskID int64, sig syscall.Signal, toGroup bool) error {
	p, ok := s.lookup(taskID)
	if !ok {
		return fmt.Errorf("task %d is not supervised", taskID)
	}
	metrics.SupervisorSignalTotal.WithLabelValues(sig.String()).Inc()
	return p.signal(sig, toGroup)
}

// Pause delivers SIGSTOP to the task's process group.
func (s *Supervisor) Pause(taskID int64) error {
	return s.Signal(taskID, syscall.SIGSTOP, true)
}

// Resume delivers SIGCONT to the task's process group.
func (s *Supervisor) Resume(taskID int64) error {
	return s.Signal(taskID, syscall.SIGCONT, true)
}

// Kill delivers SIGKILL to the task's process group. Already-exited
// targets are not treated as an error (see process.signal).
func (s *Supervisor) Kill(taskID int64) error {
	return s.Signal(taskID, syscall.SIGKILL, true)
}

// StdinSend writes data to the task's stdin pipe.
func (s *Supervisor) StdinSend(taskID int64, data []byte) error {
	p, ok := s.lookup(taskID)
	if !ok {
		return fmt.Errorf("task %d is not supervised", taskID)
	}
	return p.writeStdin(data)
}

// Alive performs a non-blocking liveness probe on taskID's process.
func (s *Supervisor) Alive(taskID int64) bool {
	p, ok := s.lookup(taskID)
	if !ok {
		return false
	}
	return p.alive()
}

// ShutdownAll sends SIGTERM to every supervised process group, checks up
// to maxPolls times for them to exit (calling pollEvery between checks and
// stopping early when it returns false), then SIGKILLs the stragglers. This is the
// two-phase graceful shutdown the daemon runs before exiting.
func (s *Supervisor) ShutdownAll(pollEvery func() bool, maxPolls int) {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.processes))
	for id := range s.processes {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		_ = s.Signal(id, syscall.SIGTERM, true)
	}

	for i := 0; i < maxPolls; i++ {
		if s.liveCount() == 0 {
			return
		}
		if !pollEvery() {
			break
		}
	}

	s.mu.Lock()
	remaining := make([]int64, 0, len(s.processes))
	for id := range s.processes {
		remaining = append(remaining, id)
	}
	s.mu.Unlock()

	for _, id := range remaining {
		_ = s.Signal(id, syscall.SIGKILL, true)
	}
}

func (s *Supervisor) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processes)
}
