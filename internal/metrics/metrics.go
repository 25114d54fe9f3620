package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analysis_sessions_active",
		Help: "Currently active WebSocket analysis sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analysis_sessions_total",
		Help: "Total analysis sessions accepted",
	})

	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_runs_total",
		Help: "Analysis runs by prediction type and terminal status",
	}, []string{"prediction_type", "status"})

	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_step_duration_seconds",
		Help:    "Per-step latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"step"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_run_duration_seconds",
		Help:    "End-to-end latency from request acceptance to terminal event",
		Buckets: []float64{0.1, 0.3, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})

	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analysis_upload_bytes_total",
		Help: "Total decoded audio payload bytes received",
	})
)
