package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTokenBucket(t *testing.T) {
	t.Run("creates bucket with specified RPS", func(t *testing.T) {
		b := newTokenBucket(100)
		assert.NotNil(t, b)
		assert.Equal(t, float64(100), b.maxTokens)
		assert.Equal(t, float64(100), b.refillRate)
	})

	t.Run("defaults to 1000 RPS when zero provided", func(t *testing.T) {
		b := newTokenBucket(0)
		assert.Equal(t, float64(1000), b.maxTokens)
	})

	t.Run("defaults to 1000 RPS when negative provided", func(t *testing.T) {
		b := newTokenBucket(-5)
		assert.Equal(t, float64(1000), b.maxTokens)
	})
}

func TestTokenBucket_Allow(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		b := newTokenBucket(10)

		for i := 0; i < 10; i++ {
			assert.True(t, b.allow(), "request %d should be allowed", i)
		}
	})

	t.Run("denies requests over limit", func(t *testing.T) {
		b := newTokenBucket(5)

		for i := 0; i < 5; i++ {
			b.allow()
		}

		assert.False(t, b.allow())
	})

	t.Run("refills tokens over time", func(t *testing.T) {
		b := newTokenBucket(10)

		for i := 0; i < 10; i++ {
			b.allow()
		}
		assert.False(t, b.allow())

		// 10 rps = 1 token per 100ms
		time.Sleep(150 * time.Millisecond)

		assert.True(t, b.allow())
	})
}

func TestNewDebugClientRateLimiter(t *testing.T) {
	limiter := NewDebugClientRateLimiter(100)
	assert.NotNil(t, limiter)
	assert.NotNil(t, limiter.buckets)
	assert.Equal(t, 100, limiter.rps)
}

func TestDebugClientRateLimiter_BucketFor(t *testing.T) {
	t.Run("creates new bucket for unknown client", func(t *testing.T) {
		crl := NewDebugClientRateLimiter(10)

		b := crl.bucketFor("client-1")
		assert.NotNil(t, b)
		assert.Equal(t, float64(10), b.maxTokens)
	})

	t.Run("returns same bucket for same client", func(t *testing.T) {
		crl := NewDebugClientRateLimiter(10)

		b1 := crl.bucketFor("client-1")
		b2 := crl.bucketFor("client-1")

		assert.Same(t, b1, b2)
	})

	t.Run("returns different buckets for different clients", func(t *testing.T) {
		crl := NewDebugClientRateLimiter(10)

		b1 := crl.bucketFor("client-1")
		b2 := crl.bucketFor("client-2")

		assert.NotSame(t, b1, b2)
	})
}

func TestDebugRateLimit_Middleware(t *testing.T) {
	t.Run("allows requests within client limit", func(t *testing.T) {
		handler := DebugRateLimit(100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/debug/state", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("uses X-Forwarded-For when available", func(t *testing.T) {
		handler := DebugRateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for _, client := range []string{"10.0.0.1", "10.0.0.2"} {
			for i := 0; i < 2; i++ {
				req := httptest.NewRequest("GET", "/debug/state", nil)
				req.Header.Set("X-Forwarded-For", client)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}
	})

	t.Run("returns 429 when client limit exceeded", func(t *testing.T) {
		handler := DebugRateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest("GET", "/debug/state", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if i < 2 {
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			}
		}
	})
}
