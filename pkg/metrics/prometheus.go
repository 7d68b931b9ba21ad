package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"BoostPull/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesCreated   *prometheus.CounterVec
	cyclesCompleted *prometheus.CounterVec
	successRate     *prometheus.GaugeVec
	observations    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	predictionError *prometheus.HistogramVec
	scoreLatency    prometheus.Histogram
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boostpull_cycles_created_total",
				Help: "Total number of prediction cycles created",
			},
			[]string{"mode"},
		),
		cyclesCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boostpull_cycles_completed_total",
				Help: "Total number of prediction cycles completed",
			},
			[]string{"mode"},
		),
		successRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boostpull_cycle_success_rate",
				Help: "Success rate of the most recently completed cycle",
			},
			[]string{"mode"},
		),
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boostpull_observations_total",
				Help: "Total number of price observations recorded",
			},
			[]string{"asset"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boostpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		predictionError: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boostpull_prediction_abs_error_pct",
				Help:    "Absolute prediction error in percentage points",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
			},
			[]string{"classification"},
		),
		scoreLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "boostpull_score_duration_seconds",
				Help:    "Duration of a full asset scoring pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boostpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycleCreated records a newly created cycle.
func (r *Recorder) RecordCycleCreated(mode string) {
	r.cyclesCreated.WithLabelValues(mode).Inc()
}

// RecordCycleCompleted records a completed cycle and its success rate.
func (r *Recorder) RecordCycleCompleted(mode string, successRate float64) {
	r.cyclesCompleted.WithLabelValues(mode).Inc()
	r.successRate.WithLabelValues(mode).Set(successRate)
}

// RecordObservation records a price observation for an asset.
func (r *Recorder) RecordObservation(asset string) {
	r.observations.WithLabelValues(asset).Inc()
}

// RecordScoreLatency records the duration of a scoring pass in seconds.
func (r *Recorder) RecordScoreLatency(seconds float64) {
	r.scoreLatency.Observe(seconds)
}

// RecordPredictionError records the absolute error of a validated prediction.
func (r *Recorder) RecordPredictionError(class models.Classification, absErrPct float64) {
	r.predictionError.WithLabelValues(string(class)).Observe(absErrPct)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
