package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelationshipToggles counts follow and like toggles by kind and resulting state.
	RelationshipToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_relationship_toggles_total",
		Help: "Follow and like toggles by kind and resulting state",
	}, []string{"kind", "state"})

	// UploadsTotal counts upload attempts by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_uploads_total",
		Help: "Image upload attempts by outcome",
	}, []string{"outcome"})

	// UploadBytes observes accepted upload sizes.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "murmur_upload_bytes",
		Help:    "Size of accepted uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 6),
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// RealtimeEventsTotal counts published realtime events by type.
	RealtimeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_realtime_events_total",
		Help: "Realtime events published by type",
	}, []string{"event_type"})
)

// ToggleState labels a toggle result.
func ToggleState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
