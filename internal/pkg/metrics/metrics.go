package metrics

import (
	"errors"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medwatch_turns_processed_total",
			Help: "Total number of questionnaire turns by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	SectionsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medwatch_sections_skipped_total",
			Help: "Total number of questionnaire sections skipped by branch resolution",
		},
		[]string{"section"},
	)

	CollaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medwatch_collaborator_duration_seconds",
			Help:    "Duration of calls to external collaborators in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"collaborator", "outcome"},
	)

	ReportsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medwatch_reports_submitted_total",
			Help: "Total number of report submissions by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medwatch_http_request_duration_seconds",
			Help:    "Duration of API requests by route pattern, method and status class",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	TelegramUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medwatch_telegram_updates_total",
			Help: "Total number of Telegram updates by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

// Outcome maps a use case error to an outcome label
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, entity.ErrTurnInProgress),
		errors.Is(err, entity.ErrEmptyAnswer),
		errors.Is(err, entity.ErrSessionCancelled),
		errors.Is(err, entity.ErrSessionSubmitted):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// ObserveCollaborator records how long a collaborator call took since start
func ObserveCollaborator(collaborator string, start time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	CollaboratorDuration.WithLabelValues(collaborator, outcome).Observe(time.Since(start).Seconds())
}
