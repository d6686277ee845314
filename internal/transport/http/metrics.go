package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jordway1/homelessness/pkg/contracts/domain"
)

var (
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pit",
		Name:      "pipeline_runs_total",
		Help:      "Pipeline runs by outcome.",
	}, []string{"outcome"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pit",
		Name:      "pipeline_run_duration_seconds",
		Help:      "Wall-clock duration of full pipeline runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	rowsUnioned = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pit",
		Name:      "rows_unioned",
		Help:      "Longitudinal rows produced by the last run.",
	})

	unresolvedJoinKeys = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pit",
		Name:      "unresolved_join_keys",
		Help:      "Rows whose join key failed to resolve in the last run.",
	}, []string{"join"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pit",
		Name:      "http_requests_total",
		Help:      "API requests by route and status class.",
	}, []string{"route", "status"})
)

func observeRunStarted() time.Time {
	return time.Now()
}

func observeRunFinished(start time.Time, err error) {
	if err != nil {
		pipelineRuns.WithLabelValues("error").Inc()
		return
	}
	pipelineRuns.WithLabelValues("ok").Inc()
	pipelineDuration.Observe(time.Since(start).Seconds())
}

func observeRunStats(stats domain.RunStats) {
	rowsUnioned.Set(float64(stats.RowsUnioned))
	unresolvedJoinKeys.WithLabelValues("backfill").Set(float64(stats.BackfillMisses))
	unresolvedJoinKeys.WithLabelValues("state").Set(float64(stats.UnresolvedStates))
	unresolvedJoinKeys.WithLabelValues("population").Set(float64(stats.MissingPop))
}
