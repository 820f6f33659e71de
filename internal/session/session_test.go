package session

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	pmerrors "github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/logger"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness runs a session on a loopback port and records its notifications.
type harness struct {
	t       *testing.T
	s       *Session
	done    chan error
	notesMu sync.Mutex
	notes   []Notification
	closed  chan struct{}
	ready   chan struct{}
}

func startSession(t *testing.T, ctx context.Context, cfg Config, opts ...Option) *harness {
	t.Helper()
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}

	h := &harness{
		t:      t,
		s:      New(cfg, opts...),
		done:   make(chan error, 1),
		closed: make(chan struct{}),
		ready:  make(chan struct{}),
	}

	go func() {
		var once sync.Once
		for n := range h.s.Notifications() {
			h.notesMu.Lock()
			h.notes = append(h.notes, n)
			h.notesMu.Unlock()
			if n.Kind == KindInfo && strings.HasPrefix(n.Message, "listening on") {
				once.Do(func() { close(h.ready) })
			}
		}
		close(h.closed)
	}()

	go func() {
		h.done <- h.s.Run(ctx)
	}()
	return h
}

func (h *harness) dial() net.Conn {
	h.t.Helper()
	select {
	case <-h.ready:
	case <-time.After(2 * time.Second):
		h.t.Fatal("session never started listening")
	}
	conn, err := net.Dial("tcp", h.s.Addr().String())
	require.NoError(h.t, err)
	return conn
}

func (h *harness) wait() ([]Notification, error) {
	h.t.Helper()
	var err error
	select {
	case err = <-h.done:
	case <-time.After(3 * time.Second):
		h.t.Fatal("session did not finish")
	}
	select {
	case <-h.closed:
	case <-time.After(time.Second):
		h.t.Fatal("notification channel was not closed")
	}
	h.notesMu.Lock()
	defer h.notesMu.Unlock()
	return h.notes, err
}

func kinds(notes []Notification) []Kind {
	out := make([]Kind, len(notes))
	for i, n := range notes {
		out[i] = n.Kind
	}
	return out
}

func messages(notes []Notification, kind Kind) []string {
	var out []string
	for _, n := range notes {
		if n.Kind == kind {
			out = append(out, n.Message)
		}
	}
	return out
}

func send(t *testing.T, conn net.Conn, lines ...string) {
	t.Helper()
	_, err := conn.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
}

func TestSession_FullLifecycle(t *testing.T) {
	h := startSession(t, context.Background(), Config{})
	assert.Equal(t, StateIdle, h.s.State())

	conn := h.dial()
	send(t, conn, "100", "600", "600", "100", "600")
	conn.Close()

	notes, err := h.wait()
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindInit,
		KindInfo, // listening
		KindInfo, // accepted
		KindDataArrived, KindDataArrived, KindDataArrived, KindDataArrived, KindDataArrived,
		KindInfo, // finished
		KindStopped,
	}, kinds(notes))

	infos := messages(notes, KindInfo)
	assert.Contains(t, infos[0], "listening on 127.0.0.1:")
	assert.Contains(t, infos[1], "accepted connection from 127.0.0.1:")
	assert.Equal(t, "finished", infos[2])

	var values []int
	for _, n := range notes {
		if n.Kind == KindDataArrived {
			values = append(values, n.Sample.Value)
			assert.Equal(t, StateConnected, n.State)
		}
	}
	assert.Equal(t, []int{100, 600, 600, 100, 600}, values)

	assert.Equal(t, StateFinished, h.s.State())
	assert.True(t, h.s.State().Terminal())
	assert.Equal(t, 5, h.s.Store().Count())
	assert.Equal(t, StateFinished, notes[len(notes)-1].State)
}

func TestSession_SkipPolicyIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		h := startSession(t, context.Background(), Config{ParsePolicy: ParseSkip})

		conn := h.dial()
		send(t, conn, "100", "abc", "200")
		conn.Close()

		notes, err := h.wait()
		require.NoError(t, err)

		assert.Equal(t, 2, h.s.Store().Count())
		assert.Contains(t, messages(notes, KindInfo), `skipped malformed sample "abc"`)
		assert.Empty(t, messages(notes, KindError))
		assert.Equal(t, StateFinished, h.s.State())
	}
}

func TestSession_AbortPolicy(t *testing.T) {
	for i := 0; i < 3; i++ {
		h := startSession(t, context.Background(), Config{ParsePolicy: ParseAbort})

		conn := h.dial()
		send(t, conn, "100", "abc", "200")

		notes, err := h.wait()
		conn.Close()

		require.Error(t, err)
		assert.True(t, pmerrors.IsCode(err, pmerrors.ErrParse))
		assert.ErrorIs(t, err, sample.ErrParse)

		assert.Equal(t, 1, h.s.Store().Count())
		assert.Equal(t, StateFailed, h.s.State())
		assert.Equal(t, KindError, notes[len(notes)-1].Kind)
		assert.NotContains(t, kinds(notes), KindStopped)
	}
}

func TestSession_BindError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	h := startSession(t, context.Background(), Config{Port: port})
	notes, err := h.wait()

	require.Error(t, err)
	assert.True(t, pmerrors.IsCode(err, pmerrors.ErrBind))
	assert.Equal(t, []Kind{KindInit, KindError}, kinds(notes))
	assert.Equal(t, StateFailed, h.s.State())
	assert.Nil(t, h.s.Addr())
	assert.Contains(t, notes[1].Message, "Can't listen on")
	assert.Equal(t, err, notes[1].Err)
}

func TestSession_RunOnlyOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := startSession(t, ctx, Config{})
	<-h.ready

	assert.ErrorIs(t, h.s.Run(ctx), ErrAlreadyStarted)

	cancel()
	_, err := h.wait()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_CancelWhileListening(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := startSession(t, ctx, Config{})
	<-h.ready

	cancel()
	notes, err := h.wait()

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, KindStopped, notes[len(notes)-1].Kind)
	assert.Equal(t, StateFinished, h.s.State())
}

func TestSession_CancelWhileConnected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := startSession(t, ctx, Config{})

	conn := h.dial()
	defer conn.Close()
	send(t, conn, "700")

	require.Eventually(t, func() bool { return h.s.Store().Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	notes, err := h.wait()
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, KindStopped, notes[len(notes)-1].Kind)
	assert.Equal(t, StateFinished, h.s.State())
}

func TestSession_SecondClientNeverAccepted(t *testing.T) {
	h := startSession(t, context.Background(), Config{})

	first := h.dial()
	send(t, first, "1")
	require.Eventually(t, func() bool { return h.s.State() == StateConnected }, 2*time.Second, 10*time.Millisecond)

	second, err := net.DialTimeout("tcp", h.s.Addr().String(), 500*time.Millisecond)
	if err == nil {
		second.Write([]byte("999\n"))
		second.Close()
	}

	first.Close()
	notes, err := h.wait()
	require.NoError(t, err)

	for _, n := range notes {
		if n.Kind == KindDataArrived {
			assert.NotEqual(t, 999, n.Sample.Value, "second client's data must never arrive")
		}
	}
	assert.Equal(t, 1, h.s.Store().Count())
}

func TestSession_TransportFailure(t *testing.T) {
	h := startSession(t, context.Background(), Config{})

	conn := h.dial()
	send(t, conn, "512")
	require.Eventually(t, func() bool { return h.s.Store().Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Abortive close sends RST instead of FIN.
	require.NoError(t, conn.(*net.TCPConn).SetLinger(0))
	conn.Close()

	notes, err := h.wait()
	require.Error(t, err)
	assert.True(t, pmerrors.IsCode(err, pmerrors.ErrTransport))
	assert.Equal(t, StateFailed, h.s.State())
	assert.Equal(t, KindError, notes[len(notes)-1].Kind)
}

type fakeRecorder struct {
	mu       sync.Mutex
	stored   []int
	rejected int
	states   []State
}

func (f *fakeRecorder) SampleStored(s sample.Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, s.Value)
}

func (f *fakeRecorder) SampleRejected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected++
}

func (f *fakeRecorder) StateChanged(st State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, st)
}

func TestSession_RecorderAndLogger(t *testing.T) {
	rec := &fakeRecorder{}
	log := logger.NewBufferLogger()
	h := startSession(t, context.Background(), Config{}, WithRecorder(rec), WithLogger(log))

	conn := h.dial()
	send(t, conn, "10", "x", "20")
	conn.Close()
	_, err := h.wait()
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []int{10, 20}, rec.stored)
	assert.Equal(t, 1, rec.rejected)
	assert.Equal(t, []State{StateListening, StateConnected, StateFinished}, rec.states)

	assert.True(t, log.Contains("warn", `skipped malformed sample "x"`))
	assert.True(t, log.Contains("info", "accepted connection"))
}

func TestSession_ConfigReachesStore(t *testing.T) {
	threshold := 300
	s := New(Config{Threshold: &threshold, Window: 10 * time.Second})
	assert.Equal(t, 300, s.Store().Threshold())
	assert.Equal(t, 10*time.Second, s.Store().Window())

	zero := 0
	s = New(Config{Threshold: &zero})
	assert.Equal(t, 0, s.Store().Threshold())

	s = New(Config{})
	assert.Equal(t, sample.DefaultThreshold, s.Store().Threshold())
	assert.Equal(t, sample.DefaultWindow, s.Store().Window())
}

func TestSession_PublishNeverBlocks(t *testing.T) {
	s := New(Config{}, WithBufferSize(1))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			s.publish(Notification{Kind: KindDataArrived})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full channel")
	}
	assert.Len(t, s.notes, 1)
}
