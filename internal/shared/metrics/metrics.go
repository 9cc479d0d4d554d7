// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts decoded webhook events by kind.
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_webhook_events_total",
			Help: "Webhook events accepted, by kind",
		},
		[]string{"kind"},
	)

	// WebhookRejected counts payloads that failed to decode.
	WebhookRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_webhook_rejected_total",
			Help: "Webhook payloads rejected at decode",
		},
	)

	// NoteOperations counts note persistence calls by operation and result.
	NoteOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_note_operations_total",
			Help: "Internal note persistence operations",
		},
		[]string{"operation", "result"},
	)

	// ConversationsCreated counts conversations opened by inbound messages or the API.
	ConversationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_conversations_created_total",
			Help: "Conversations created",
		},
	)

	// StatusPolls counts coordinator status polls by result.
	StatusPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_coordinator_status_polls_total",
			Help: "Coordinator status polls",
		},
		[]string{"result"},
	)
)

// RecordNoteOperation records one persistence call
func RecordNoteOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	NoteOperations.WithLabelValues(op, result).Inc()
}
