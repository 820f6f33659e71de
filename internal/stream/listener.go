// Package stream turns a single inbound TCP connection into a sequence of
// text records, one per line.
package stream

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/rileyhilliard/pulsemon/internal/errors"
)

// ErrListenerClosed is returned by Accept once the listener has already
// handed out its one connection or been closed.
var ErrListenerClosed = stderrors.New("listener closed")

// Listener accepts exactly one connection and then stops listening.
type Listener struct {
	ln   net.Listener
	addr string

	mu   sync.Mutex
	used bool
}

// Listen binds host:port. Bind failures (port in use, unknown host) are
// returned as BIND errors.
func Listen(ctx context.Context, host string, port int) (*Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrBind,
			fmt.Sprintf("Can't listen on %s", addr),
			"Check that nothing else is using the port and the host resolves, or pick another with --host/--port.")
	}

	return &Listener{ln: ln, addr: addr}, nil
}

// Addr returns the bound address. With port 0 this is the chosen port.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept waits for one client, then closes the listening socket so no
// other client is ever accepted. Cancelling ctx aborts the wait.
func (l *Listener) Accept(ctx context.Context) (net.Conn, error) {
	l.mu.Lock()
	if l.used {
		l.mu.Unlock()
		return nil, ErrListenerClosed
	}
	l.used = true
	l.mu.Unlock()

	defer l.ln.Close()

	stop := context.AfterFunc(ctx, func() {
		l.ln.Close()
	})
	defer stop()

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Stopped listening on %s before a sensor connected", l.addr),
			"")
	}
	return conn, nil
}

// Close stops listening and unblocks a pending Accept. Accept calls after
// Close return ErrListenerClosed.
func (l *Listener) Close() error {
	l.mu.Lock()
	l.used = true
	l.mu.Unlock()

	if err := l.ln.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
