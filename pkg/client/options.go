package client

import "time"

// Option configures the Client.
type Option func(*options)

type options struct {
	dialTimeout time.Duration
	secret      string
	tokenTTL    time.Duration
}

func defaultOptions() *options {
	return &options{
		dialTimeout: 5 * time.Second,
		tokenTTL:    time.Minute,
	}
}

// WithDialTimeout bounds how long Dial waits to connect to the daemon's
// control socket.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithSecret configures the preshared secret used to satisfy the daemon's
// handshake, when the daemon has one configured. It is a no-op against a
// daemon with auth disabled.
func WithSecret(secret string) Option {
	return func(o *options) { o.secret = secret }
}

// WithTokenTTL overrides the lifetime of the handshake token minted for
// the connection (default one minute — it only needs to live long enough
// for the daemon to read and verify the first frame).
func WithTokenTTL(ttl time.Duration) Option {
	return func(o *options) { o.tokenTTL = ttl }
}
