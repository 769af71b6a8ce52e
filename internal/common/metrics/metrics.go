// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quest_worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"task_type"},
	)

	// LevelScore observes every level score produced by the scoring engine.
	LevelScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quest_level_score",
			Help:    "Distribution of per-level completeness scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"level"},
	)

	OverallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quest_overall_score",
			Help:    "Distribution of overall project scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quest_match_candidates",
			Help:    "Number of templates evaluated per match request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// CacheLookups counts Redis read-through cache outcomes per store.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quest_cache_lookups_total",
			Help: "Read-through cache lookups by store and result",
		},
		[]string{"store", "result"},
	)
)
