package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	seatOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airtickets_seat_operations_total",
			Help: "Seat ledger operations by class and result",
		},
		[]string{"operation", "seat_class", "result"},
	)

	orderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airtickets_order_transitions_total",
			Help: "Order status changes",
		},
		[]string{"status", "reason"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airtickets_webhook_events_total",
			Help: "Payment webhook deliveries by event type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	confirmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airtickets_order_confirm_duration_seconds",
			Help:    "Time spent confirming an order",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func TrackSeat(operation, class string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	seatOperations.WithLabelValues(operation, class, result).Inc()
}

func TrackTransition(status, reason string) {
	orderTransitions.WithLabelValues(status, reason).Inc()
}

func TrackWebhook(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

func ObserveConfirm(seconds float64) {
	confirmDuration.Observe(seconds)
}
