// Package metrics exposes process telemetry for the prefetch pipeline and
// resume refresh. Registered on the default registry; the edge binary and
// the warm worker serve them via promhttp.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	laneQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "prefetch",
		Name:      "lane_queries_total",
		Help:      "Boot prefetch query outcomes by lane.",
	}, []string{"lane", "result"})

	laneSettleSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "prefetch",
		Name:      "lane_settle_seconds",
		Help:      "Elapsed time from dispatch t0 until a lane's batch settled.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"lane"})

	resumeRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "refresh",
		Name:      "resume_total",
		Help:      "Resume-refresh outcomes (fired, throttled, ignored).",
	}, []string{"outcome"})
)

// LaneQuery records one prefetch query outcome ("ok" or "failed").
func LaneQuery(lane int, result string) {
	laneQueries.WithLabelValues(strconv.Itoa(lane), result).Inc()
}

// LaneSettled records how long after t0 a lane's batch settled.
func LaneSettled(lane int, seconds float64) {
	laneSettleSeconds.WithLabelValues(strconv.Itoa(lane)).Observe(seconds)
}

// Resume records a resume-refresh outcome.
func Resume(outcome string) {
	resumeRefresh.WithLabelValues(outcome).Inc()
}
