package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	OracleRequests     *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec
	AttemptsRecorded   *prometheus.CounterVec
	AnswersGraded      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"method", "route"},
		),
		OracleRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_oracle_requests_total",
				Help: "Question generation calls by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		ExtractionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_oracle_extraction_failures_total",
				Help: "Oracle responses that yielded no usable JSON, by stage",
			},
			[]string{"stage"},
		),
		AttemptsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_attempts_recorded_total",
				Help: "Attempt writes by outcome",
			},
			[]string{"outcome"},
		),
		AnswersGraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_answers_graded_total",
				Help: "Graded answers by correctness",
			},
			[]string{"correct"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.OracleRequests,
		m.ExtractionFailures,
		m.AttemptsRecorded,
		m.AnswersGraded,
	)
	return m
}

// NewUnregistered returns collectors bound to a throwaway registry.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		route := RouteTemplate(r)
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RouteTemplate returns the matched mux route template, or "unmatched".
func RouteTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// StatusRecorder captures the status code written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}
