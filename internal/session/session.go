// Package session runs one monitoring session: listen, accept a single
// sensor, ingest its readings into a sample store, and report progress as
// notifications.
//
// The session is a one-shot state machine:
//
//	Idle -> Listening -> Connected -> Finished | Failed
//
// Run is the entire body of the ingestion worker and is meant to be called
// on its own goroutine. Everything it has to say to the outside world goes
// through the Notifications channel.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/logger"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/stream"
)

// DefaultBufferSize is the notification channel capacity.
const DefaultBufferSize = 256

// ErrAlreadyStarted is returned when Run is called more than once.
var ErrAlreadyStarted = stderrors.New("session already started")

// Config holds the session parameters.
type Config struct {
	Host        string
	Port        int
	Threshold   *int // nil keeps sample.DefaultThreshold; 0 is a valid threshold
	Window      time.Duration
	ParsePolicy ParsePolicy
}

// Recorder receives ingestion events for instrumentation.
type Recorder interface {
	SampleStored(s sample.Sample)
	SampleRejected()
	StateChanged(st State)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder attaches instrumentation.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.rec = r
	}
}

// WithClock sets the clock used for sample timestamps and notifications.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithBufferSize sets the notification channel capacity.
func WithBufferSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.bufSize = n
		}
	}
}

// Session monitors one sensor connection.
type Session struct {
	cfg     Config
	store   *sample.Store
	log     logger.Logger
	rec     Recorder
	clock   func() time.Time
	bufSize int
	notes   chan Notification

	started atomic.Bool
	state   atomic.Int32

	mu   sync.Mutex
	addr net.Addr
}

// New creates an idle session that owns a fresh sample store.
func New(cfg Config, opts ...Option) *Session {
	if cfg.ParsePolicy == "" {
		cfg.ParsePolicy = ParseSkip
	}

	s := &Session{
		cfg:     cfg,
		log:     logger.Noop(),
		clock:   time.Now,
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	storeOpts := []sample.Option{sample.WithClock(s.clock), sample.WithWindow(cfg.Window)}
	if cfg.Threshold != nil {
		storeOpts = append(storeOpts, sample.WithThreshold(*cfg.Threshold))
	}
	s.store = sample.NewStore(storeOpts...)
	s.notes = make(chan Notification, s.bufSize)
	return s
}

// Store returns the session's sample store. Safe for concurrent reads.
func (s *Session) Store() *sample.Store {
	return s.store
}

// Notifications returns the channel Run reports on. It is closed when Run
// returns.
func (s *Session) Notifications() <-chan Notification {
	return s.notes
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Addr returns the bound listen address, or nil before Listening.
func (s *Session) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens, accepts one sensor and ingests until the peer closes, the
// transport fails or ctx is cancelled. It returns nil when the sensor
// closed the connection cleanly.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(s.notes)

	s.send(ctx, Notification{Kind: KindInit, Message: "starting"})

	s.setState(StateListening)
	ln, err := stream.Listen(ctx, s.cfg.Host, s.cfg.Port)
	if err != nil {
		return s.fail(ctx, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.info(ctx, "listening on %s", ln.Addr())

	conn, err := ln.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return s.cancelled(ctx)
		}
		return s.fail(ctx, err)
	}
	defer conn.Close()

	s.setState(StateConnected)
	s.info(ctx, "accepted connection from %s", conn.RemoteAddr())

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	return s.ingest(ctx, stream.NewReader(conn))
}

// ingest is the Connected state: one record per iteration until a terminal
// result.
func (s *Session) ingest(ctx context.Context, r *stream.Reader) error {
	for {
		line, err := r.Next()
		if err != nil {
			if ctx.Err() != nil {
				return s.cancelled(ctx)
			}
			if stderrors.Is(err, io.EOF) {
				s.info(ctx, "finished")
				s.setState(StateFinished)
				s.send(ctx, Notification{Kind: KindStopped, Message: "sensor stopped sending data"})
				return nil
			}
			return s.fail(ctx, err)
		}

		smp, err := s.store.Append(line)
		if err != nil {
			if s.rec != nil {
				s.rec.SampleRejected()
			}
			if s.cfg.ParsePolicy == ParseAbort {
				return s.fail(ctx, errors.WrapWithCode(err, errors.ErrParse,
					"Sensor sent a malformed sample",
					"Set detection.parse_policy to skip to ignore bad lines."))
			}
			s.log.Warn("skipped malformed sample %q", line)
			s.info(ctx, "skipped malformed sample %q", line)
			continue
		}

		if s.rec != nil {
			s.rec.SampleStored(smp)
		}
		s.publish(Notification{Kind: KindDataArrived, Sample: smp})
	}
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	s.log.Debug("state -> %s", st)
	if s.rec != nil {
		s.rec.StateChanged(st)
	}
}

func (s *Session) info(ctx context.Context, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.log.Info("%s", msg)
	s.send(ctx, Notification{Kind: KindInfo, Message: msg})
}

func (s *Session) fail(ctx context.Context, err error) error {
	s.setState(StateFailed)
	s.log.Error("%s", errors.Summary(err))
	s.send(ctx, Notification{Kind: KindError, Message: errors.Summary(err), Err: err})
	return err
}

func (s *Session) cancelled(ctx context.Context) error {
	s.setState(StateFinished)
	s.send(ctx, Notification{Kind: KindStopped, Message: "monitoring cancelled"})
	return ctx.Err()
}

func (s *Session) stamp(n Notification) Notification {
	n.State = s.State()
	n.At = s.clock()
	return n
}

// send delivers a control notification. It only gives up when the buffer
// is full and ctx is done.
func (s *Session) send(ctx context.Context, n Notification) {
	n = s.stamp(n)
	select {
	case s.notes <- n:
		return
	default:
	}
	select {
	case s.notes <- n:
	case <-ctx.Done():
		s.log.Debug("dropped %s notification after cancellation", n.Kind)
	}
}

// publish delivers a data notification without blocking ingestion. When the
// buffer is full the notification is dropped; readers re-derive everything
// from the store.
func (s *Session) publish(n Notification) {
	n = s.stamp(n)
	select {
	case s.notes <- n:
	default:
		s.log.Debug("display is behind, dropped data notification")
	}
}
