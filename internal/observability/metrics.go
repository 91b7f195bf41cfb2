package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesCast counts vote engine outcomes by target kind and action (created, removed, flipped).
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queryhub_votes_cast_total",
		Help: "Total number of votes processed by the vote engine",
	}, []string{"target_kind", "action"})

	// ReputationDelta sums reputation granted or removed by reason.
	ReputationDelta = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queryhub_reputation_changes_total",
		Help: "Number of reputation adjustments by reason",
	}, []string{"reason"})

	// AnswersAccepted counts successful accept operations.
	AnswersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queryhub_answers_accepted_total",
		Help: "Total number of answers marked as accepted",
	})

	// SearchQueries counts question searches by detected pattern kind.
	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queryhub_search_queries_total",
		Help: "Total number of question searches by pattern kind",
	}, []string{"kind"})

	// CacheResults counts cache lookups by outcome (hit, miss, error).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queryhub_cache_results_total",
		Help: "Cache lookups by outcome",
	}, []string{"outcome"})

	// EventsPublished counts domain events by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queryhub_events_published_total",
		Help: "Domain events published to the broker",
	}, []string{"event_type", "outcome"})

	// HTTPRequestDuration records request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "queryhub_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
