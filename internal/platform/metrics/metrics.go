package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the onboarding flows and the
// reference backends.
type Metrics struct {
	ViewTransitions    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	ExternalCalls      *prometheus.CounterVec
	ExternalCallTime   *prometheus.HistogramVec
	FacilitiesAssessed prometheus.Counter
	CodesIssued        *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New registers the collectors with reg, or the default registry when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ViewTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zirrmi_onboarding_view_transitions_total",
			Help: "Screen transitions performed by the onboarding orchestrator",
		}, []string{"from", "to"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zirrmi_onboarding_validation_failures_total",
			Help: "User input refused by validation, by flow",
		}, []string{"flow"}),
		ExternalCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zirrmi_backend_calls_total",
			Help: "Calls to onboarding backends by operation and outcome",
		}, []string{"operation", "outcome"}),
		ExternalCallTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zirrmi_backend_call_duration_seconds",
			Help:    "Latency of onboarding backend calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		FacilitiesAssessed: f.NewCounter(prometheus.CounterOpts{
			Name: "zirrmi_facilities_assessed_total",
			Help: "Facilities received in accepted assessments",
		}),
		CodesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "zirrmi_verification_codes_issued_total",
			Help: "One-time codes issued, by channel",
		}, []string{"channel"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zirrmi_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) RecordTransition(from, to string) {
	m.ViewTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordValidationFailure(flow string) {
	m.ValidationFailures.WithLabelValues(flow).Inc()
}

// ObserveCall records the outcome and latency of one backend call.
func (m *Metrics) ObserveCall(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ExternalCalls.WithLabelValues(operation, outcome).Inc()
	m.ExternalCallTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddFacilitiesAssessed(n int) {
	m.FacilitiesAssessed.Add(float64(n))
}

func (m *Metrics) IncrementCodesIssued(channel string) {
	m.CodesIssued.WithLabelValues(channel).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
