package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pueued/pueue-go/internal/task"
)

func TestCalculateBackoff_GrowsExponentially(t *testing.T) {
	p := &RestartPolicy{
		MaxAttempts:    5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     1 * time.Minute,
		BackoffFactor:  2.0,
		JitterFactor:   0,
	}

	assert.Equal(t, 1*time.Second, p.CalculateBackoff(0))
	assert.Equal(t, 4*time.Second, p.CalculateBackoff(2))
}

func TestCalculateBackoff_CapsAtMax(t *testing.T) {
	p := &RestartPolicy{
		MaxAttempts:    10,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  10.0,
		JitterFactor:   0,
	}

	assert.Equal(t, 5*time.Second, p.CalculateBackoff(5))
}

func TestShouldRestart_RespectsMaxAttempts(t *testing.T) {
	p := DefaultRestartPolicy()
	tk := task.New("echo", "/tmp", nil, task.DefaultGroup)

	tk.Restarts = 2
	assert.True(t, p.ShouldRestart(tk))

	tk.Restarts = 3
	assert.False(t, p.ShouldRestart(tk))
}

func TestNextRestartTime_IsInTheFuture(t *testing.T) {
	p := DefaultRestartPolicy()
	tk := task.New("echo", "/tmp", nil, task.DefaultGroup)

	before := time.Now()
	next := p.NextRestartTime(tk)
	assert.True(t, next.After(before))
}
