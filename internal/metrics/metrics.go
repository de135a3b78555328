// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package metrics provides Prometheus instrumentation for the ingest
// pipeline, the fan-out hub, the deduplication sweep and the API
// surface. All collectors are registered on the default registry via
// promauto and exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingest Metrics
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Total webhook submissions by outcome",
		},
		[]string{"outcome"}, // "created", "duplicate", "invalid", "error"
	)

	WebhookBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_batch_size",
			Help:    "Number of items per webhook submission",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	// Fan-out Metrics
	FanoutSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanout_subscribers",
			Help: "Current number of live dashboard subscribers",
		},
	)

	FanoutMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_messages_published_total",
			Help: "Total messages published to the fan-out hub",
		},
		[]string{"type"},
	)

	// Sweep Metrics
	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Total deduplication sweep passes by result",
		},
		[]string{"result"}, // "success", "error"
	)

	SweepRowsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_rows_removed_total",
			Help: "Total stale duplicate rows removed by the sweep",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of deduplication sweep passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweep_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful sweep pass",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Database Metrics
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)
)

// RecordWebhookOutcome records one processed submission item.
func RecordWebhookOutcome(outcome string) {
	WebhooksReceived.WithLabelValues(outcome).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSweep records one sweep pass.
func RecordSweep(duration time.Duration, removed int64, err error) {
	SweepDuration.Observe(duration.Seconds())
	if err != nil {
		SweepRuns.WithLabelValues("error").Inc()
		return
	}
	SweepRuns.WithLabelValues("success").Inc()
	SweepRowsRemoved.Add(float64(removed))
	SweepLastSuccess.Set(float64(time.Now().Unix()))
}
