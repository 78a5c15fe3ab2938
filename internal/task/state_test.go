package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Queued, "queued"},
		{Stashed, "stashed"},
		{Running, "running"},
		{Paused, "paused"},
		{Done, "done"},
		{Locked, "locked"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(Queued, Running))
	assert.True(t, CanTransitionTo(Queued, Stashed))
	assert.False(t, CanTransitionTo(Done, Running))
	assert.True(t, CanTransitionTo(Done, Queued), "restart requeues a finished task")
	assert.False(t, CanTransitionTo(Paused, Stashed))
}

func TestStateMachine_Lifecycle(t *testing.T) {
	tk := New("sleep 1", "/tmp", nil, DefaultGroup)
	sm := NewStateMachine(tk)

	require.NoError(t, sm.Start())
	assert.Equal(t, Running, tk.Status.Kind)
	assert.NotNil(t, tk.Start)

	require.NoError(t, sm.Pause())
	assert.Equal(t, Paused, tk.Status.Kind)

	require.NoError(t, sm.Resume())
	assert.Equal(t, Running, tk.Status.Kind)

	require.NoError(t, sm.Finish(SuccessResult()))
	assert.Equal(t, Done, tk.Status.Kind)
	assert.Equal(t, Success, tk.Status.Result.Kind)
	assert.NotNil(t, tk.End)
}

func TestStateMachine_InvalidTransition(t *testing.T) {
	tk := New("sleep 1", "/tmp", nil, DefaultGroup)
	sm := NewStateMachine(tk)

	err := sm.Resume()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStateMachine_StashAndEnqueue(t *testing.T) {
	tk := New("sleep 1", "/tmp", nil, DefaultGroup)
	sm := NewStateMachine(tk)

	at := time.Now().Add(time.Hour)
	require.NoError(t, sm.Stash(&at))
	assert.Equal(t, Stashed, tk.Status.Kind)
	assert.Equal(t, &at, tk.Status.EnqueueAt)

	require.NoError(t, sm.Enqueue())
	assert.Equal(t, Queued, tk.Status.Kind)
}

func TestStateMachine_Restart(t *testing.T) {
	tk := New("sleep 1", "/tmp", nil, DefaultGroup)
	sm := NewStateMachine(tk)
	require.NoError(t, sm.Start())
	require.NoError(t, sm.Finish(FailedResult(1)))

	require.NoError(t, sm.Restart())
	assert.Equal(t, Queued, tk.Status.Kind)
	assert.Nil(t, tk.Start)
	assert.Nil(t, tk.End)
}

func TestStateMachine_RestartWithDelay(t *testing.T) {
	tk := New("sleep 1", "/tmp", nil, DefaultGroup)
	sm := NewStateMachine(tk)
	require.NoError(t, sm.Start())
	require.NoError(t, sm.Finish(FailedResult(1)))

	at := time.Now().Add(time.Minute)
	require.NoError(t, sm.RestartWithDelay(at))
	assert.Equal(t, Stashed, tk.Status.Kind)
	assert.Equal(t, &at, tk.Status.EnqueueAt)
	assert.Equal(t, 1, tk.Restarts)
	assert.Nil(t, tk.Start)
	assert.Nil(t, tk.End)

	require.Error(t, sm.RestartWithDelay(at), "only a Done task can be restarted")
}
