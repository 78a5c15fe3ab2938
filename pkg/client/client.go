package client

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/pueued/pueue-go/internal/auth"
	"github.com/pueued/pueue-go/internal/handlers"
	"github.com/pueued/pueue-go/internal/socket"
)

// Client is a connection to the daemon's control socket. Every request
// is sent and its reply read while holding mu, matching the daemon's own
// per-connection serialization — a Client is safe for concurrent use,
// but concurrent calls queue rather than interleave.
type Client struct {
	conn net.Conn
	opts *options
	mu   sync.Mutex
}

// Dial connects to the daemon's Unix domain control socket at path and
// performs the handshake if a secret was configured.
func Dial(path string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	conn, err := net.DialTimeout("unix", path, o.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", path, err)
	}

	c := &Client{conn: conn, opts: o}

	if o.secret != "" {
		if err := c.handshake(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return c, nil
}

func (c *Client) handshake() error {
	token, err := auth.New(c.opts.secret, c.opts.tokenTTL).IssueToken()
	if err != nil {
		return fmt.Errorf("client: issue handshake token: %w", err)
	}
	payload, err := json.Marshal(struct {
		Token string `json:"token"`
	}{Token: token})
	if err != nil {
		return err
	}
	return socket.WriteFrame(c.conn, payload)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// do sends one request envelope and returns the daemon's decoded reply.
func (c *Client) do(requestType string, req interface{}) (handlers.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var payload json.RawMessage
	if req != nil {
		p, err := json.Marshal(req)
		if err != nil {
			return handlers.Reply{}, err
		}
		payload = p
	}

	envelope, err := json.Marshal(socket.Envelope{Type: requestType, Payload: payload})
	if err != nil {
		return handlers.Reply{}, err
	}
	if err := socket.WriteFrame(c.conn, envelope); err != nil {
		return handlers.Reply{}, fmt.Errorf("client: write %s request: %w", requestType, err)
	}

	raw, err := socket.ReadFrame(c.conn)
	if err != nil {
		return handlers.Reply{}, fmt.Errorf("client: read %s reply: %w", requestType, err)
	}

	var env socket.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return handlers.Reply{}, err
	}

	var reply handlers.Reply
	if err := json.Unmarshal(env.Payload, &reply); err != nil {
		return handlers.Reply{}, err
	}
	if reply.Kind == handlers.ErrorReply {
		return reply, fmt.Errorf("client: %s", reply.Message)
	}
	return reply, nil
}

func (c *Client) Add(req handlers.AddRequest) (handlers.Reply, error) { return c.do("add", req) }
func (c *Client) Remove(req handlers.RemoveRequest) (handlers.Reply, error) {
	return c.do("remove", req)
}
func (c *Client) Kill(req handlers.KillRequest) (handlers.Reply, error) { return c.do("kill", req) }
func (c *Client) Pause(req handlers.PauseRequest) (handlers.Reply, error) {
	return c.do("pause", req)
}
func (c *Client) Start(req handlers.StartRequest) (handlers.Reply, error) {
	return c.do("start", req)
}
func (c *Client) Stash(req handlers.StashRequest) (handlers.Reply, error) {
	return c.do("stash", req)
}
func (c *Client) Enqueue(req handlers.EnqueueRequest) (handlers.Reply, error) {
	return c.do("enqueue", req)
}
func (c *Client) Switch(req handlers.SwitchRequest) (handlers.Reply, error) {
	return c.do("switch", req)
}
func (c *Client) Edit(req handlers.EditRequest) (handlers.Reply, error) { return c.do("edit", req) }
func (c *Client) Group(req handlers.GroupRequest) (handlers.Reply, error) {
	return c.do("group", req)
}
func (c *Client) Clean(req handlers.CleanRequest) (handlers.Reply, error) {
	return c.do("clean", req)
}
func (c *Client) Reset(req handlers.ResetRequest) (handlers.Reply, error) {
	return c.do("reset", req)
}
func (c *Client) Status(req handlers.StatusRequest) (handlers.Reply, error) {
	return c.do("status", req)
}
func (c *Client) Log(req handlers.LogRequest) (handlers.Reply, error) { return c.do("log", req) }

// StreamLog requests a tail-follow of one task's log and returns a
// channel of raw chunks as the daemon reads them off disk. Unlike every
// other request, the daemon does not wrap these in reply envelopes — it
// writes successive raw frames until the connection is closed, so the
// caller closing Client (or the returned stop func) is what ends the
// stream.
func (c *Client) StreamLog(req handlers.StreamLogRequest) (<-chan []byte, func(), error) {
	c.mu.Lock()

	payload, err := json.Marshal(req)
	if err != nil {
		c.mu.Unlock()
		return nil, nil, err
	}
	envelope, err := json.Marshal(socket.Envelope{Type: "stream_log", Payload: payload})
	if err != nil {
		c.mu.Unlock()
		return nil, nil, err
	}
	if err := socket.WriteFrame(c.conn, envelope); err != nil {
		c.mu.Unlock()
		return nil, nil, fmt.Errorf("client: write stream_log request: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer c.mu.Unlock()
		for {
			chunk, err := socket.ReadFrame(c.conn)
			if err != nil {
				return
			}
			out <- chunk
		}
	}()

	stop := func() { c.conn.Close() }
	return out, stop, nil
}
