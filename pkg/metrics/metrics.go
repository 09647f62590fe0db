// Package metrics exposes Prometheus instrumentation for the live session.
// A nil *Metrics is valid and records nothing, so instrumented code never
// needs to guard its calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the companion.
type Metrics struct {
	registry *prometheus.Registry

	// Outbound media
	MediaBytesTotal    *prometheus.CounterVec
	FramesDroppedTotal prometheus.Counter

	// Inbound events by type
	EventsTotal *prometheus.CounterVec

	// Tool invocations by name and outcome
	ToolInvocationsTotal *prometheus.CounterVec

	// Session state transitions
	StateTransitionsTotal *prometheus.CounterVec

	// Playback
	PlaybackStopsTotal prometheus.Counter
	PlaybackEnqueues   prometheus.Counter
}

// New creates a Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "aura"
	}

	registry := prometheus.NewRegistry()

	mediaBytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_bytes_total",
			Help:      "Total outbound media payload bytes by MIME type",
		},
		[]string{"mime_type"},
	)

	framesDroppedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Total camera frames dropped because a grab was already in flight",
		},
	)

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total inbound session events by type",
		},
		[]string{"type"},
	)

	toolInvocationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Total tool invocations by name and outcome",
		},
		[]string{"name", "outcome"},
	)

	stateTransitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total session state transitions",
		},
		[]string{"state"},
	)

	playbackStopsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_stops_total",
			Help:      "Total forced playback stops",
		},
	)

	playbackEnqueues := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_enqueues_total",
			Help:      "Total audio buffers scheduled for playback",
		},
	)

	registry.MustRegister(
		mediaBytesTotal,
		framesDroppedTotal,
		eventsTotal,
		toolInvocationsTotal,
		stateTransitionsTotal,
		playbackStopsTotal,
		playbackEnqueues,
	)

	return &Metrics{
		registry:              registry,
		MediaBytesTotal:       mediaBytesTotal,
		FramesDroppedTotal:    framesDroppedTotal,
		EventsTotal:           eventsTotal,
		ToolInvocationsTotal:  toolInvocationsTotal,
		StateTransitionsTotal: stateTransitionsTotal,
		PlaybackStopsTotal:    playbackStopsTotal,
		PlaybackEnqueues:      playbackEnqueues,
	}
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AddMediaBytes records outbound media payload size.
func (m *Metrics) AddMediaBytes(mimeType string, n int) {
	if m == nil || n < 0 {
		return
	}
	m.MediaBytesTotal.WithLabelValues(mimeType).Add(float64(n))
}

// IncFrameDropped records one outbound camera frame skipped under load.
func (m *Metrics) IncFrameDropped() {
	if m == nil {
		return
	}
	m.FramesDroppedTotal.Inc()
}

// IncEvent records one inbound event.
func (m *Metrics) IncEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType).Inc()
}

// IncTool records one tool invocation outcome.
func (m *Metrics) IncTool(name, outcome string) {
	if m == nil {
		return
	}
	m.ToolInvocationsTotal.WithLabelValues(name, outcome).Inc()
}

// IncState records one session state transition.
func (m *Metrics) IncState(state string) {
	if m == nil {
		return
	}
	m.StateTransitionsTotal.WithLabelValues(state).Inc()
}

// IncPlaybackStop records one forced playback stop.
func (m *Metrics) IncPlaybackStop() {
	if m == nil {
		return
	}
	m.PlaybackStopsTotal.Inc()
}

// IncPlaybackEnqueue records one scheduled playback buffer.
func (m *Metrics) IncPlaybackEnqueue() {
	if m == nil {
		return
	}
	m.PlaybackEnqueues.Inc()
}
