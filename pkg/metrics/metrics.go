// Package metrics provides Prometheus metrics for the PII generation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsGeneratedTotal tracks generated records by kind
	RecordsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "piigen",
			Subsystem: "generate",
			Name:      "records_total",
			Help:      "Total number of synthetic records generated by kind",
		},
		[]string{"kind"},
	)

	// GenerationDuration tracks batch generation duration in seconds
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "piigen",
			Subsystem: "generate",
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch generation in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"kind"},
	)

	// GenerationFailuresTotal tracks failed generation runs by reason
	GenerationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "piigen",
			Subsystem: "generate",
			Name:      "failures_total",
			Help:      "Total number of failed generation runs by reason",
		},
		[]string{"reason"},
	)

	// RecordsPersistedTotal tracks records written to the database by table
	RecordsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "piigen",
			Subsystem: "storage",
			Name:      "records_persisted_total",
			Help:      "Total number of records written to the database by table",
		},
		[]string{"table"},
	)

	// AuditQueriesTotal tracks auditor queries by outcome
	AuditQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "piigen",
			Subsystem: "audit",
			Name:      "queries_total",
			Help:      "Total number of auditor queries by outcome",
		},
		[]string{"outcome"},
	)

	// LeakFindingsTotal tracks leak scanner findings by sensitivity tier
	LeakFindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "piigen",
			Subsystem: "audit",
			Name:      "leak_findings_total",
			Help:      "Total number of leak scanner findings by sensitivity tier",
		},
		[]string{"tier"},
	)
)
