package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OutboxRelayedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgw_outbox_relayed_total",
			Help: "Outbox events relayed to Kafka by topic and outcome",
		},
		[]string{"topic", "status"}, // sent|failed
	)

	ResultsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgw_results_consumed_total",
			Help: "Processed results consumed by kind and outcome",
		},
		[]string{"kind", "status"}, // summary|transcription|action_items , stored|poison
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetgw_ws_notifications_total",
			Help: "WebSocket notifications pushed by type and delivery path",
		},
		[]string{"type", "path"}, // path: targeted|broadcast
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meetgw_ws_connections",
			Help: "Live WebSocket connections",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		OutboxRelayedTotal,
		ResultsConsumedTotal,
		NotificationsTotal,
		WSConnections,
	)
}
