package gpt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bf_snap_gpt_runs_total",
		Help: "Number of gpt invocations by outcome.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bf_snap_gpt_run_duration_seconds",
		Help:    "Wall-clock duration of gpt invocations.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

func observeRun(result *Result, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	runsTotal.WithLabelValues(outcome).Inc()
	runDuration.Observe(result.Duration.Seconds())
}
