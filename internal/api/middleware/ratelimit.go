package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/metrics"
)

// tokenBucket is a simple token-bucket rate limiter, one per debug-surface
// client.
type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rps int) *tokenBucket {
	if rps <= 0 {
		rps = 1000 // default
	}
	return &tokenBucket{
		tokens:     float64(rps),
		maxTokens:  float64(rps),
		refillRate: float64(rps),
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// DebugClientRateLimiter hands out a token bucket per caller of the debug
// HTTP surface, keyed by the caller's address. The debug surface is
// read-only and loopback-bound by default, so per-client rather than
// global limiting is enough to stop one runaway dashboard poller from
// starving others sharing the same daemon.
type DebugClientRateLimiter struct {
	buckets map[string]*tokenBucket
	rps     int
	mu      sync.RWMutex
	cleanup time.Duration
}

// NewDebugClientRateLimiter creates a per-client rate limiter for the
// debug HTTP surface, allowing rps requests/second per client.
func NewDebugClientRateLimiter(rps int) *DebugClientRateLimiter {
	crl := &DebugClientRateLimiter{
		buckets: make(map[string]*tokenBucket),
		rps:     rps,
		cleanup: 5 * time.Minute,
	}
	go crl.cleanupLoop()
	return crl
}

func (crl *DebugClientRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(crl.cleanup)
	defer ticker.Stop()
	for range ticker.C {
		crl.mu.Lock()
		crl.buckets = make(map[string]*tokenBucket)
		crl.mu.Unlock()
	}
}

func (crl *DebugClientRateLimiter) bucketFor(clientID string) *tokenBucket {
	crl.mu.RLock()
	b, ok := crl.buckets[clientID]
	crl.mu.RUnlock()
	if ok {
		return b
	}

	crl.mu.Lock()
	defer crl.mu.Unlock()
	if b, ok = crl.buckets[clientID]; ok {
		return b
	}
	b = newTokenBucket(crl.rps)
	crl.buckets[clientID] = b
	return b
}

// DebugRateLimit returns chi middleware that enforces per-client rate
// limiting on the debug HTTP surface (state snapshots, metrics, the
// dashboard websocket upgrade). Rejections are logged and counted as
// pueue_debug_ratelimit_rejections_total rather than surfaced per-group,
// since the debug surface has no concept of a task group at the HTTP
// layer — group filtering happens inside the Query Engine, not here.
func DebugRateLimit(rps int) func(next http.Handler) http.Handler {
	limiter := NewDebugClientRateLimiter(rps)
	log := logger.WithComponent("debug-ratelimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get("X-Forwarded-For")
			if clientID == "" {
				clientID = r.RemoteAddr
			}

			if !limiter.bucketFor(clientID).allow() {
				metrics.RecordDebugRateLimitRejection()
				log.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("client", clientID).
					Msg("debug surface rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too Many Requests","message":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
