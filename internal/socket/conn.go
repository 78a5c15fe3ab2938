package socket

import (
	"encoding/json"
	"net"

	"github.com/pueued/pueue-go/internal/auth"
	"github.com/pueued/pueue-go/internal/handlers"
	"github.com/pueued/pueue-go/internal/logger"
)

// handshakeEnvelope is the shape of the first frame on a connection when
// a preshared secret is configured: {"token": "<jwt>"}.
type handshakeEnvelope struct {
	Token string `json:"token"`
}

// Conn serializes every request on a single accepted connection: one
// frame is fully handled (dispatched, replied) before the next is read,
// matching spec.md's "per-connection request serialization with in-order
// replies."
type Conn struct {
	nc         net.Conn
	dispatcher *handlers.Dispatcher
	handshake  *auth.Handshake // nil when no preshared secret is configured
}

func NewConn(nc net.Conn, dispatcher *handlers.Dispatcher, handshake *auth.Handshake) *Conn {
	return &Conn{nc: nc, dispatcher: dispatcher, handshake: handshake}
}

// Serve handles this connection until it is closed or the first frame
// fails the handshake. It never returns an error; failures are logged
// and the connection is closed.
func (c *Conn) Serve() {
	defer c.nc.Close()

	log := logger.WithComponent("socket.conn")

	if c.handshake != nil {
		if !c.doHandshake() {
			log.Warn().Msg("closing connection: handshake failed")
			return
		}
	}

	for {
		payload, err := ReadFrame(c.nc)
		if err != nil {
			return // EOF or connection reset: client disconnected
		}

		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}

		if env.Type == "stream_log" {
			c.serveStreamLog(env)
			continue
		}

		reply := c.handleRequest(env)
		out, err := encodeReply(reply)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode reply")
			return
		}
		if err := WriteFrame(c.nc, out); err != nil {
			return
		}
	}
}

func (c *Conn) doHandshake() bool {
	payload, err := ReadFrame(c.nc)
	if err != nil {
		return false
	}
	var hs handshakeEnvelope
	if err := json.Unmarshal(payload, &hs); err != nil {
		return false
	}
	return c.handshake.Verify(hs.Token) == nil
}

func (c *Conn) handleRequest(env Envelope) handlers.Reply {
	req, err := decodeRequest(env)
	if err != nil {
		return handlers.Reply{Kind: handlers.ErrorReply, Message: err.Error()}
	}
	return c.dispatcher.Dispatch(env.Type, req)
}

// serveStreamLog handles StreamLog specially: rather than one reply, it
// keeps writing log-chunk frames until a write fails because the client
// closed the connection, per spec.md's "stream until client disconnects."
// It does not stop when the task exits or its log stops growing.
func (c *Conn) serveStreamLog(env Envelope) {
	req, err := decodeRequest(env)
	if err != nil {
		return
	}
	streamReq := req.(*handlers.StreamLogRequest)

	done := make(chan struct{})
	defer close(done)

	chunks, err := c.dispatcher.StreamLog(streamReq, done)
	if err != nil {
		reply := handlers.Reply{Kind: handlers.ErrorReply, Message: err.Error()}
		out, encErr := encodeReply(reply)
		if encErr == nil {
			_ = WriteFrame(c.nc, out)
		}
		return
	}

	for chunk := range chunks {
		if err := WriteFrame(c.nc, chunk); err != nil {
			return
		}
	}
}
