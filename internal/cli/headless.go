package cli

import (
	"io"
	"sync"
	"time"

	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/session"
	"github.com/rileyhilliard/pulsemon/internal/ui"
)

const (
	defaultPulseEvery = 5 * time.Second
	pulseSparkWidth   = 32
)

// headlessPrinter prints one line per notification plus a periodic BPM
// summary. It implements session.Sink.
type headlessPrinter struct {
	out     io.Writer
	store   *sample.Store
	display config.DisplayConfig
	every   time.Duration

	mu  sync.Mutex
	log *ui.EventLog
}

func newHeadlessPrinter(out io.Writer, store *sample.Store, display config.DisplayConfig, every time.Duration) *headlessPrinter {
	if every <= 0 {
		every = defaultPulseEvery
	}
	return &headlessPrinter{
		out:     out,
		store:   store,
		display: display,
		every:   every,
		log:     ui.NewEventLog(out),
	}
}

// Header prints the banner shown before the first event.
func (p *headlessPrinter) Header(listenAddr, configPath string) {
	detail := "listen " + listenAddr
	if configPath != "" {
		detail += "  config " + configPath
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ui.PrintHeader(p.out, ui.HeaderInfo{
		Version: formatVersion(version),
		Tagline: "Live pulse sensor monitor",
		Detail:  detail,
	})
}

// Handle implements session.Sink.
func (p *headlessPrinter) Handle(n session.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch n.Kind {
	case session.KindInit, session.KindInfo:
		if n.State == session.StateListening {
			p.log.Listening(n.At, n.Message)
		} else {
			p.log.Info(n.At, n.Message)
		}
	case session.KindError:
		p.log.Error(n.At, n.Message)
	case session.KindStopped:
		p.log.Stopped(n.At, n.Message)
		if p.store.Count() > 0 {
			p.pulseLocked(n.At)
		}
	case session.KindDataArrived:
		p.log.Sample(n.Sample.Time(), n.Sample.Value, p.store.Threshold())
	}
}

// Pulse prints the BPM summary line.
func (p *headlessPrinter) Pulse(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pulseLocked(now)
}

func (p *headlessPrinter) pulseLocked(now time.Time) {
	stats := p.store.Stats(now)
	recent := p.store.RecentWindow(p.display.BufferSize)

	values := make([]int, len(recent))
	for i, smp := range recent {
		values[i] = smp.Value
	}

	p.log.Pulse(now, ui.PulseLine{
		BPM:              stats.BPM,
		Samples:          stats.Count,
		SamplesPerSecond: float64(stats.SamplesPerSecond),
		Spark: ui.RenderSparkline(values, pulseSparkWidth, ui.SparkScale{
			Min:       p.display.MinValue,
			Max:       p.display.MaxValue,
			Threshold: p.store.Threshold(),
		}),
	})
}

// Run dispatches notes to sinks and the printer until the session closes
// the channel, printing a summary every interval while data exists.
func (p *headlessPrinter) Run(notes <-chan session.Notification, sinks ...session.Sink) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Dispatch(notes, append(sinks, p)...)
	}()

	ticker := time.NewTicker(p.every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			if p.store.Count() > 0 {
				p.Pulse(now)
			}
		}
	}
}
