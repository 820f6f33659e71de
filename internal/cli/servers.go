package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/logger"
)

// shutdownTimeout bounds how long a server gets to finish in-flight requests.
const shutdownTimeout = 2 * time.Second

// serverGroup runs the optional HTTP endpoints next to a session.
type serverGroup struct {
	log logger.Logger

	mu      sync.Mutex
	servers []*http.Server
	addrs   map[string]string
}

func newServerGroup(log logger.Logger) *serverGroup {
	return &serverGroup{log: log, addrs: make(map[string]string)}
}

// Serve binds addr synchronously, so a busy port is reported before the
// session starts, and serves handler at pattern in the background.
func (g *serverGroup) Serve(addr, pattern string, handler http.Handler, code, name string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapWithCode(err, code,
			fmt.Sprintf("Can't serve %s on %s", name, addr),
			fmt.Sprintf("Pick a free address or clear %s.addr in your .pulsemon.yaml.", name))
	}

	mux := http.NewServeMux()
	mux.Handle(pattern, handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g.mu.Lock()
	g.servers = append(g.servers, srv)
	g.addrs[name] = ln.Addr().String()
	g.mu.Unlock()

	g.log.Info("serving %s on http://%s%s", name, ln.Addr(), pattern)
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			g.log.Error("%s server: %v", name, err)
		}
	}()
	return nil
}

// Addr returns the bound address of the named server, or "" if it isn't running.
func (g *serverGroup) Addr(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addrs[name]
}

// Shutdown stops every server.
func (g *serverGroup) Shutdown() {
	g.mu.Lock()
	servers := g.servers
	g.servers = nil
	g.mu.Unlock()

	for _, srv := range servers {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(ctx); err != nil {
			g.log.Warn("server shutdown: %v", err)
		}
		cancel()
	}
}
