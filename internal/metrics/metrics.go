// Package metrics defines the Prometheus collectors exported on METRICS_PORT.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interactions"

// Metrics groups every collector the service updates.
type Metrics struct {
	// ActiveConnections counts authenticated live connections.
	ActiveConnections prometheus.Gauge
	// ActiveRooms counts rooms with at least one subscriber.
	ActiveRooms prometheus.Gauge
	// EventsReceived counts inbound live events. Labels: event
	EventsReceived *prometheus.CounterVec
	// EventsDelivered counts frames queued to connections. Labels: event
	EventsDelivered *prometheus.CounterVec
	// EventsDropped counts frames or inbound events that were discarded.
	// Labels: reason (buffer_full, rate_limited, malformed)
	EventsDropped *prometheus.CounterVec
	// HandshakeFailures counts live-channel handshakes refused for bad credentials.
	HandshakeFailures prometheus.Counter
	// Toggles counts toggle outcomes. Labels: edge (follow, like), result (active, inactive, conflict)
	Toggles *prometheus.CounterVec
	// NotificationsRecorded counts ledger writes. Labels: type
	NotificationsRecorded *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "active_connections",
			Help:      "Authenticated live connections",
		}),
		ActiveRooms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "active_rooms",
			Help:      "Rooms with at least one subscribed connection",
		}),
		EventsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_received_total",
			Help:      "Inbound live-channel events by name",
		}, []string{"event"}),
		EventsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_delivered_total",
			Help:      "Outbound frames queued to connections by event name",
		}, []string{"event"}),
		EventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_dropped_total",
			Help:      "Frames or inbound events discarded",
		}, []string{"reason"}),
		HandshakeFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "handshake_failures_total",
			Help:      "Live-channel handshakes refused for bad credentials",
		}),
		Toggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "toggles_total",
			Help:      "Follow and like toggle outcomes",
		}, []string{"edge", "result"}),
		NotificationsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "notifications_recorded_total",
			Help:      "Notifications written to the ledger by type",
		}, []string{"type"}),
	}
}
