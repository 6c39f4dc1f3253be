// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "overcomer_content_fetch_duration_seconds",
			Help:    "Time taken to fetch content in seconds, including retries",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		},
		[]string{"operation", "category"},
	)

	FetchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcomer_content_fetch_total",
			Help: "Total number of fetches by outcome",
		},
		[]string{"operation", "category", "outcome"},
	)

	AttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcomer_content_attempts_total",
			Help: "Total number of chat completion attempts",
		},
		[]string{"operation"},
	)

	CacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcomer_content_cache_total",
			Help: "Cache lookups by result",
		},
		[]string{"category", "result"},
	)

	PromptTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcomer_content_prompt_tokens_total",
			Help: "Total number of prompt tokens used",
		},
		[]string{"model"},
	)

	CompletionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overcomer_content_completion_tokens_total",
			Help: "Total number of completion tokens used",
		},
		[]string{"model"},
	)
)
