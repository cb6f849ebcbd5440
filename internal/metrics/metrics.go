// Package metrics exposes Prometheus instrumentation for the voice
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the voice pipeline.
type Metrics struct {
	reg prometheus.Gatherer

	// Capture
	ListeningSessions prometheus.Counter
	Utterances        prometheus.Counter
	UtteranceBytes    prometheus.Histogram

	// Recognition
	RecognitionRequests prometheus.Counter
	RecognitionFailures *prometheus.CounterVec
	RecognitionLatency  prometheus.Histogram

	// Commands
	CommandsDispatched *prometheus.CounterVec
	CommandsDebounced  prometheus.Counter

	// Synthesis
	SynthesisRequests prometheus.Counter
	SynthesisFailures *prometheus.CounterVec
	SynthesisLatency  prometheus.Histogram
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		ListeningSessions: f.NewCounter(prometheus.CounterOpts{
			Name: "ottovoice_listening_sessions_total",
			Help: "Total number of microphone listening sessions started",
		}),
		Utterances: f.NewCounter(prometheus.CounterOpts{
			Name: "ottovoice_utterances_total",
			Help: "Total number of utterances emitted by voice activity detection",
		}),
		UtteranceBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ottovoice_utterance_bytes",
			Help:    "Size of encoded utterance payloads",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 8),
		}),

		RecognitionRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "ottovoice_recognition_requests_total",
			Help: "Total number of speech recognition requests issued",
		}),
		RecognitionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ottovoice_recognition_failures_total",
			Help: "Speech recognition failures by kind",
		}, []string{"kind"}),
		RecognitionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ottovoice_recognition_duration_seconds",
			Help:    "Round-trip time of speech recognition requests",
			Buckets: prometheus.DefBuckets,
		}),

		CommandsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ottovoice_commands_dispatched_total",
			Help: "Voice commands dispatched by type",
		}, []string{"command"}),
		CommandsDebounced: f.NewCounter(prometheus.CounterOpts{
			Name: "ottovoice_commands_debounced_total",
			Help: "Voice commands dropped by the debounce window",
		}),

		SynthesisRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "ottovoice_synthesis_requests_total",
			Help: "Total number of speech synthesis requests issued",
		}),
		SynthesisFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ottovoice_synthesis_failures_total",
			Help: "Speech synthesis failures by kind",
		}, []string{"kind"}),
		SynthesisLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ottovoice_synthesis_duration_seconds",
			Help:    "Round-trip time of speech synthesis requests",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// SessionStarted records a new listening session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ListeningSessions.Inc()
}

// UtteranceEmitted records one flushed utterance of n bytes.
func (m *Metrics) UtteranceEmitted(n int) {
	if m == nil {
		return
	}
	m.Utterances.Inc()
	m.UtteranceBytes.Observe(float64(n))
}

// RecognitionDone records one recognition round trip. kind is empty on
// success.
func (m *Metrics) RecognitionDone(elapsed time.Duration, kind string) {
	if m == nil {
		return
	}
	m.RecognitionRequests.Inc()
	m.RecognitionLatency.Observe(elapsed.Seconds())
	if kind != "" {
		m.RecognitionFailures.WithLabelValues(kind).Inc()
	}
}

// SynthesisDone records one synthesis round trip. kind is empty on success.
func (m *Metrics) SynthesisDone(elapsed time.Duration, kind string) {
	if m == nil {
		return
	}
	m.SynthesisRequests.Inc()
	m.SynthesisLatency.Observe(elapsed.Seconds())
	if kind != "" {
		m.SynthesisFailures.WithLabelValues(kind).Inc()
	}
}

// CommandDispatched records a command that passed the debounce gate.
func (m *Metrics) CommandDispatched(command string) {
	if m == nil {
		return
	}
	m.CommandsDispatched.WithLabelValues(command).Inc()
}

// CommandDebounced records a command dropped by the debounce gate.
func (m *Metrics) CommandDebounced() {
	if m == nil {
		return
	}
	m.CommandsDebounced.Inc()
}
