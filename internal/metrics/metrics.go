// Package metrics provides Prometheus instrumentation for a monitoring session.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/session"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "pulsemon"

// Metrics holds the session's Prometheus collectors. It implements
// session.Recorder.
type Metrics struct {
	SamplesStored   prometheus.Counter
	SamplesRejected prometheus.Counter
	LastValue       prometheus.Gauge
	LastSampleTime  prometheus.Gauge
	SessionState    *prometheus.GaugeVec

	namespace string
	registry  prometheus.Registerer
	gatherer  prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		SamplesStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples_stored_total",
			Help:      "Total number of sensor samples stored",
		}),
		SamplesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples_rejected_total",
			Help:      "Total number of malformed sensor records",
		}),
		LastValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "last_value",
			Help:      "Most recent raw sensor value",
		}),
		LastSampleTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "last_sample_timestamp_seconds",
			Help:      "Unix timestamp of the most recent sample",
		}),
		SessionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "state",
			Help:      "1 for the session's current state, 0 otherwise",
		}, []string{"state"}),
		namespace: namespace,
		registry:  reg,
		gatherer:  reg,
	}
}

// ObserveStore registers gauges computed from the store on every scrape.
func (m *Metrics) ObserveStore(store *sample.Store) {
	namespace := m.namespace
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sensor",
			Name:      "bpm",
			Help:      "Beats per minute over the trailing detection window",
		}, func() float64 {
			return float64(store.BPM(time.Now()))
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "samples",
			Help:      "Number of samples held in the store",
		}, func() float64 {
			return float64(store.Count())
		}),
	)
}

// SampleStored implements session.Recorder.
func (m *Metrics) SampleStored(s sample.Sample) {
	m.SamplesStored.Inc()
	m.LastValue.Set(float64(s.Value))
	m.LastSampleTime.Set(float64(s.Timestamp) / 1000)
}

// SampleRejected implements session.Recorder.
func (m *Metrics) SampleRejected() {
	m.SamplesRejected.Inc()
}

// StateChanged implements session.Recorder.
func (m *Metrics) StateChanged(st session.State) {
	for _, s := range []session.State{
		session.StateIdle,
		session.StateListening,
		session.StateConnected,
		session.StateFinished,
		session.StateFailed,
	} {
		v := 0.0
		if s == st {
			v = 1
		}
		m.SessionState.WithLabelValues(s.String()).Set(v)
	}
}

// Gatherer exposes the registry for tests and custom handlers.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
