package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Triage metrics
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_predictions_total",
			Help: "Total number of predictions by disease label",
		},
		[]string{"disease"},
	)

	adviceFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_advice_fallbacks_total",
			Help: "Predictions answered with the generic fallback advice",
		},
	)

	unrecognizedSymptoms = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_unrecognized_symptoms_total",
			Help: "Input symptoms ignored because they are not in the vocabulary",
		},
	)

	predictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_prediction_errors_total",
			Help: "Failed prediction requests by HTTP status",
		},
		[]string{"status"},
	)

	missingAdviceLabels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_labels_without_advice",
			Help: "Classifier labels with no advice table entry",
		},
	)

	predictionLogDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_prediction_log_duration_seconds",
			Help:    "Time spent writing a prediction to the database",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count, latency and in-flight requests. The
// route template is used as the path label so cardinality stays bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordPrediction records a successful prediction.
func RecordPrediction(disease string, fallback bool, unrecognized int) {
	predictionsTotal.WithLabelValues(disease).Inc()
	if fallback {
		adviceFallbacks.Inc()
	}
	if unrecognized > 0 {
		unrecognizedSymptoms.Add(float64(unrecognized))
	}
}

// RecordPredictionError records a failed prediction request.
func RecordPredictionError(status int) {
	predictionErrors.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordMissingAdvice records how many labels lack an advice entry.
func RecordMissingAdvice(count int) {
	missingAdviceLabels.Set(float64(count))
}

// RecordPredictionLog records a database write of a prediction.
func RecordPredictionLog(err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	predictionLogDuration.WithLabelValues(result).Observe(duration.Seconds())
}
