package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of smartprice_predictions_total.
const (
	OutcomeOK              = "ok"
	OutcomeFloored         = "floored"
	OutcomeUnknownCategory = "unknown_category"
	OutcomeInvalid         = "invalid"
	OutcomeError           = "error"
)

// Metrics records pipeline and HTTP measurements. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	malformedRows     *prometheus.CounterVec
	predictions       *prometheus.CounterVec
	predictDuration   prometheus.Histogram
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	unknownCategory error
	invalidRequest  error
}

// New registers all collectors on a fresh registry. unknownCategory and
// invalidRequest are the sentinel errors used to classify failed predictions.
func New(unknownCategory, invalidRequest error) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		malformedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartprice_malformed_rows_total",
			Help: "Dataset rows dropped during cleaning, by offending field.",
		}, []string{"field"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartprice_predictions_total",
			Help: "Prediction requests by outcome.",
		}, []string{"outcome"}),
		predictDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartprice_predict_duration_seconds",
			Help:    "Time spent encoding and evaluating one prediction.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		unknownCategory: unknownCategory,
		invalidRequest:  invalidRequest,
	}

	m.registry.MustRegister(
		m.malformedRows,
		m.predictions,
		m.predictDuration,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) MalformedRow(field string) {
	if m == nil {
		return
	}
	m.malformedRows.WithLabelValues(field).Inc()
}

func (m *Metrics) PredictionServed(floored bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if floored {
		outcome = OutcomeFloored
	}
	m.predictions.WithLabelValues(outcome).Inc()
	m.predictDuration.Observe(d.Seconds())
}

func (m *Metrics) PredictionFailed(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeError
	switch {
	case m.unknownCategory != nil && errors.Is(err, m.unknownCategory):
		outcome = OutcomeUnknownCategory
	case m.invalidRequest != nil && errors.Is(err, m.invalidRequest):
		outcome = OutcomeInvalid
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) HTTPRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
