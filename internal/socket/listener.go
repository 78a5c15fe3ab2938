package socket

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/pueued/pueue-go/internal/auth"
	"github.com/pueued/pueue-go/internal/handlers"
	"github.com/pueued/pueue-go/internal/logger"
)

// Listener accepts connections on the daemon's Unix domain control
// socket and hands each one to a Conn running on its own goroutine.
type Listener struct {
	ln         net.Listener
	dispatcher *handlers.Dispatcher
	handshake  *auth.Handshake

	wg       sync.WaitGroup
	closeCh  chan struct{}
	closeOne sync.Once
}

// Listen removes any stale socket file at path, binds a new Unix domain
// socket there, and returns a Listener ready to Serve. handshake may be
// nil to disable the preshared-secret gate.
func Listen(path string, dispatcher *handlers.Dispatcher, handshake *auth.Handshake) (*Listener, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("socket: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("socket: listen: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("socket: chmod: %w", err)
	}

	return &Listener{
		ln:         ln,
		dispatcher: dispatcher,
		handshake:  handshake,
		closeCh:    make(chan struct{}),
	}, nil
}

// Serve runs the accept loop until Close is called. It always returns a
// non-nil error; a clean shutdown returns net.ErrClosed.
func (l *Listener) Serve() error {
	log := logger.WithComponent("socket.listener")

	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.closeCh:
				l.wg.Wait()
				return net.ErrClosed
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				l.wg.Wait()
				return err
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			NewConn(nc, l.dispatcher, l.handshake).Serve()
		}()
	}
}

// Close stops accepting new connections. In-flight connections are left
// to finish on their own; Serve returns once they have drained.
func (l *Listener) Close() error {
	l.closeOne.Do(func() {
		close(l.closeCh)
	})
	return l.ln.Close()
}
