package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	xpAwardedTotal        *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	leaderboardRerankTime *prometheus.HistogramVec
	eventsPublishedTotal  *prometheus.CounterVec
	cacheLookupsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_http_requests_total",
			Help: "Total number of student and admin API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_http_latency_seconds",
			Help:    "Latency distribution for student and admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		xpAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_xp_awarded_total",
			Help: "Experience points granted to students, by source.",
		}, []string{"source"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_submissions_total",
			Help: "Quiz and assignment submissions, split by first attempt.",
		}, []string{"type", "first"})

		leaderboardRerankTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_leaderboard_rerank_seconds",
			Help:    "Time spent applying a delta and re-ranking a leaderboard scope.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"scope"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_events_published_total",
			Help: "Gamification events published to brokers.",
		}, []string{"type"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_cache_lookups_total",
			Help: "Redis cache lookups by cache name and result.",
		}, []string{"cache", "result"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			xpAwardedTotal,
			submissionsTotal,
			leaderboardRerankTime,
			eventsPublishedTotal,
			cacheLookupsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// XPAwarded exposes the XP counter.
func XPAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return xpAwardedTotal
}

// Submissions exposes the submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// LeaderboardRerank exposes the re-rank duration histogram.
func LeaderboardRerank() *prometheus.HistogramVec {
	RegisterMetrics()
	return leaderboardRerankTime
}

// EventsPublished exposes the published events counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// CacheLookups exposes the cache hit/miss counter.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}
