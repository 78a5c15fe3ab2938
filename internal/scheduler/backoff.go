package scheduler

import (
	"math"
	"math/rand"
	"time"

	"github.com/pueued/pueue-go/internal/task"
)

// RestartPolicy governs the exponential-backoff-with-jitter delay applied
// between automatic restarts of a task (spec.md's restart-with-backoff
// affordance), distinct from a plain admin-triggered restart which
// re-queues immediately with no delay.
type RestartPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFactor   float64
}

// DefaultRestartPolicy returns a sensible default, matching the defaults
// set in internal/config.
func DefaultRestartPolicy() *RestartPolicy {
	return &RestartPolicy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     5 * time.Minute,
		BackoffFactor:  2.0,
		JitterFactor:   0.1,
	}
}

// CalculateBackoff returns the delay before the given restart attempt
// (0-indexed: attempt 0 is the first restart).
func (p *RestartPolicy) CalculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return p.InitialBackoff
	}

	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt))
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}

	if p.JitterFactor > 0 {
		jitter := backoff * p.JitterFactor * (rand.Float64()*2 - 1)
		backoff += jitter
	}
	if backoff < 0 {
		backoff = float64(p.InitialBackoff)
	}

	return time.Duration(backoff)
}

// ShouldRestart reports whether t has attempts remaining under the policy.
func (p *RestartPolicy) ShouldRestart(t *task.Task) bool {
	return t.Restarts < p.MaxAttempts
}

// NextRestartTime returns when t should next be attempted.
func (p *RestartPolicy) NextRestartTime(t *task.Task) time.Time {
	return time.Now().Add(p.CalculateBackoff(t.Restarts))
}
