// Package metrics содержит метрики Prometheus клиента заметок.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sharenotes"

// Metrics хранит коллекторы клиента в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	PublicAttemptsTotal    *prometheus.CounterVec
	ConsoleRequestsTotal   *prometheus.CounterVec
	APICircuitState        *prometheus.GaugeVec
}

// New создает реестр и регистрирует в нем метрики клиента.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		StoreOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of store operations by outcome",
			},
			[]string{"operation", "outcome"}, // fulfilled, rejected, dropped
		),
		StoreOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of store operations including the API call",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		PublicAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "public_unlock_attempts_total",
				Help:      "Total number of public note unlock attempts",
			},
			[]string{"outcome"}, // success, failure, locked
		),
		ConsoleRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "console_requests_total",
				Help:      "Total number of console HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		APICircuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "api_circuit_state",
				Help:      "Circuit breaker state of the notes API: 0 closed, 1 open, 2 half-open",
			},
			[]string{"service"},
		),
	}
}

// ObserveOperation учитывает завершение операции хранилища.
func (m *Metrics) ObserveOperation(operation, outcome string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveAttempt учитывает попытку открыть публичную заметку.
func (m *Metrics) ObserveAttempt(outcome string) {
	m.PublicAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRequest учитывает запрос к локальной консоли.
func (m *Metrics) ObserveRequest(method, route, status string) {
	m.ConsoleRequestsTotal.WithLabelValues(method, route, status).Inc()
}

// ObserveCircuitState записывает состояние Circuit Breaker сервиса.
func (m *Metrics) ObserveCircuitState(service string, state int) {
	m.APICircuitState.WithLabelValues(service).Set(float64(state))
}

// Registry возвращает реестр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает обработчик /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
