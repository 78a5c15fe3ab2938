package supervisor

import (
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pueued/pueue-go/internal/task"
)

func logPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "task.log")
}

func waitForExit(t *testing.T, ch <-chan ExitEvent) ExitEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit event")
		return ExitEvent{}
	}
}

func TestSupervisor_SpawnSuccess(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(1, "true", "/tmp", nil, logPath(t)))

	evt := waitForExit(t, s.Exits())
	assert.Equal(t, int64(1), evt.TaskID)
	assert.Equal(t, task.Success, evt.Result.Kind)
}

func TestSupervisor_SpawnFailure(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(2, "exit 7", "/tmp", nil, logPath(t)))

	evt := waitForExit(t, s.Exits())
	assert.Equal(t, task.Failed, evt.Result.Kind)
	assert.Equal(t, 7, evt.Result.ExitCode)
}

func TestSupervisor_KillMarksKilled(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(3, "sleep 30", "/tmp", nil, logPath(t)))
	require.True(t, s.IsSupervised(3))

	require.NoError(t, s.Kill(3))

	evt := waitForExit(t, s.Exits())
	assert.Equal(t, task.Killed, evt.Result.Kind)
}

func TestSupervisor_KillReapedTaskIsAnError(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(4, "true", "/tmp", nil, logPath(t)))
	waitForExit(t, s.Exits())

	err := s.Kill(4)
	assert.Error(t, err, "task 4 is no longer supervised once reaped")
}

func TestSupervisor_PauseResume(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(5, "sleep 30", "/tmp", nil, logPath(t)))

	require.NoError(t, s.Pause(5))
	assert.True(t, s.Alive(5))

	require.NoError(t, s.Resume(5))
	assert.True(t, s.Alive(5))

	require.NoError(t, s.Kill(5))
	waitForExit(t, s.Exits())
}

func TestSupervisor_StdinSend(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(6, "read line; [ \"$line\" = hello ]", "/tmp", nil, logPath(t)))

	require.NoError(t, s.StdinSend(6, []byte("hello\n")))

	evt := waitForExit(t, s.Exits())
	assert.Equal(t, task.Success, evt.Result.Kind)
}

func TestSupervisor_SignalUnsupervisedTaskErrors(t *testing.T) {
	s := New()
	err := s.Signal(999, syscall.SIGTERM, true)
	assert.Error(t, err)
}

func TestSupervisor_ShutdownAllKillsStragglers(t *testing.T) {
	s := New()
	require.NoError(t, s.Spawn(7, "sleep 30", "/tmp", nil, logPath(t)))

	polls := 0
	s.ShutdownAll(func() bool {
		polls++
		time.Sleep(10 * time.Millisecond)
		return polls < 5
	}, 5)

	evt := waitForExit(t, s.Exits())
	assert.Equal(t, int64(7), evt.TaskID)
}
