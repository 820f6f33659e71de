package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/session"
	"github.com/rileyhilliard/pulsemon/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headlessT0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)

func newTestPrinter(t *testing.T) (*headlessPrinter, *sample.Store, *bytes.Buffer) {
	t.Helper()
	ui.DisableColors()

	clock := headlessT0
	store := sample.NewStore(sample.WithClock(func() time.Time { return clock }))
	var out bytes.Buffer
	return newHeadlessPrinter(&out, store, config.DefaultConfig().Display, time.Hour), store, &out
}

func TestHeadlessPrinter_Notifications(t *testing.T) {
	p, store, out := newTestPrinter(t)
	smp, err := store.Append("600")
	require.NoError(t, err)

	p.Handle(session.Notification{Kind: session.KindInfo, State: session.StateListening, Message: "listening on 127.0.0.1:9999", At: headlessT0})
	p.Handle(session.Notification{Kind: session.KindInfo, State: session.StateConnected, Message: "accepted connection from 127.0.0.1:50123", At: headlessT0})
	p.Handle(session.Notification{Kind: session.KindDataArrived, State: session.StateConnected, Sample: smp, At: headlessT0})
	p.Handle(session.Notification{Kind: session.KindError, State: session.StateFailed, Message: "Lost the sensor connection", At: headlessT0})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], ui.SymbolPending+" listening on 127.0.0.1:9999")
	assert.Contains(t, lines[1], ui.SymbolComplete+" accepted connection")
	assert.Equal(t, "12:00:00.000    600", lines[2])
	assert.Contains(t, lines[3], ui.SymbolFail+" Lost the sensor connection")
}

func TestHeadlessPrinter_StoppedPrintsSummary(t *testing.T) {
	p, store, out := newTestPrinter(t)
	for _, v := range []string{"600", "100", "600"} {
		_, err := store.Append(v)
		require.NoError(t, err)
	}

	p.Handle(session.Notification{Kind: session.KindStopped, State: session.StateFinished, Message: "sensor stopped sending data", At: headlessT0})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], ui.SymbolStopped+" sensor stopped sending data")
	assert.Contains(t, lines[1], ui.SymbolBeat)
	assert.Contains(t, lines[1], "3 samples")
}

func TestHeadlessPrinter_StoppedWithoutDataSkipsSummary(t *testing.T) {
	p, _, out := newTestPrinter(t)

	p.Handle(session.Notification{Kind: session.KindStopped, State: session.StateFinished, Message: "monitoring cancelled", At: headlessT0})

	assert.NotContains(t, out.String(), ui.SymbolBeat)
}

func TestHeadlessPrinter_Header(t *testing.T) {
	p, _, out := newTestPrinter(t)

	p.Header("127.0.0.1:9999", "/tmp/.pulsemon.yaml")

	assert.Contains(t, out.String(), "pulsemon")
	assert.Contains(t, out.String(), "listen 127.0.0.1:9999  config /tmp/.pulsemon.yaml")
}

func TestHeadlessPrinter_RunReturnsWhenChannelCloses(t *testing.T) {
	p, _, out := newTestPrinter(t)

	notes := make(chan session.Notification, 2)
	var seen []session.Kind
	recorder := session.SinkFunc(func(n session.Notification) { seen = append(seen, n.Kind) })

	notes <- session.Notification{Kind: session.KindInit, Message: "starting", At: headlessT0}
	notes <- session.Notification{Kind: session.KindStopped, State: session.StateFinished, Message: "monitoring cancelled", At: headlessT0}
	close(notes)

	done := make(chan struct{})
	go func() {
		p.Run(notes, recorder)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}

	assert.Equal(t, []session.Kind{session.KindInit, session.KindStopped}, seen)
	assert.Contains(t, out.String(), "monitoring cancelled")
}
