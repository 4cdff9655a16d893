// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// Bot-level counters, labeled by intent/outcome rather than task type.

	MessagesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_classified_total",
			Help: "Inbound messages by classified intent",
		},
		[]string{"intent"},
	)

	SearchesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_searches_parsed_total",
			Help: "Search phrases parsed into store filters",
		},
		[]string{"outcome"},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_sent_total",
			Help: "Outbound WhatsApp deliveries by result",
		},
		[]string{"status"},
	)

	UsersUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_users_upserted_total",
			Help: "User lookups by upsert result",
		},
		[]string{"result"},
	)

	DuplicateMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_duplicate_messages_total",
			Help: "Inbound messages dropped as webhook redeliveries",
		},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_alerts_sent_total",
			Help: "Operational alerts dispatched by severity",
		},
		[]string{"severity"},
	)
)
