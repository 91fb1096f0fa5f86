// Package metrics collects Prometheus metrics for the proxy pipeline
// and the gateway's lifecycle, following the promauto-collector shape
// haasonsaas-nexus's internal/observability package uses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector the gateway registers. Construct once
// at startup with New and share the pointer across components.
type Metrics struct {
	// ProxyAttempts counts each outbound attempt by service and outcome
	// (success|retryable_error|terminal_error).
	// Labels: service, outcome
	ProxyAttempts *prometheus.CounterVec

	// ProxyRetries counts retry sleeps actually taken.
	// Labels: service
	ProxyRetries *prometheus.CounterVec

	// ProxyRequestDuration measures a whole proxied request, resolve
	// through final response, in seconds.
	// Labels: service, status_code
	ProxyRequestDuration *prometheus.HistogramVec

	// RegistryCallDuration measures RegistryClient calls.
	// Labels: operation (register|getServices|health)
	RegistryCallDuration *prometheus.HistogramVec

	// GatewayStatus is a gauge holding the current liveness.Status as an
	// integer (mirrors the Status iota ordering).
	GatewayStatus prometheus.Gauge
}

// New creates and registers every collector with the default registry.
func New() *Metrics {
	return &Metrics{
		ProxyAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_proxy_attempts_total",
				Help: "Total outbound proxy attempts by service and outcome",
			},
			[]string{"service", "outcome"},
		),
		ProxyRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_proxy_retries_total",
				Help: "Total retry delays taken during proxying, by service",
			},
			[]string{"service"},
		),
		ProxyRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_proxy_request_duration_seconds",
				Help:    "Duration of a whole proxied request, including retries",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"service", "status_code"},
		),
		RegistryCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_registry_call_duration_seconds",
				Help:    "Duration of calls to the external service registry",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		GatewayStatus: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_status",
				Help: "Current GatewayStatus as an integer (STARTING=0, ACTIVE=1, HEALTH_CHECK_FAIL=2, REREGISTERING=3, SHUTTING_DOWN=4)",
			},
		),
	}
}

// RecordAttempt records one outbound proxy attempt.
func (m *Metrics) RecordAttempt(service, outcome string) {
	if m == nil {
		return
	}
	m.ProxyAttempts.WithLabelValues(service, outcome).Inc()
}

// RecordRetry records one retry delay taken for service.
func (m *Metrics) RecordRetry(service string) {
	if m == nil {
		return
	}
	m.ProxyRetries.WithLabelValues(service).Inc()
}

// RecordRequest records the total duration of a proxied request.
func (m *Metrics) RecordRequest(service, statusCode string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ProxyRequestDuration.WithLabelValues(service, statusCode).Observe(durationSeconds)
}

// RecordRegistryCall records the duration of one RegistryClient call.
func (m *Metrics) RecordRegistryCall(operation string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RegistryCallDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// SetStatus sets the GatewayStatus gauge to the given ordinal value.
func (m *Metrics) SetStatus(ordinal int) {
	if m == nil {
		return
	}
	m.GatewayStatus.Set(float64(ordinal))
}
