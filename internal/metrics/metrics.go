package metrics

import (
	"net/http"

	"bookstore/internal/uow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	TxOutcomes  *prometheus.CounterVec
	RelayEvents *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the bookstore collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookstore",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	txOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "uow",
		Name:      "transactions_total",
		Help:      "Units of work by outcome.",
	}, []string{"outcome"})
	relayEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookstore",
		Subsystem: "relay",
		Name:      "events_total",
		Help:      "Outbox events handled by the relay.",
	}, []string{"topic", "result"})

	reg.MustRegister(requests, latency, txOutcomes, relayEvents)
	return &Metrics{
		Requests:    requests,
		LatencyMS:   latency,
		TxOutcomes:  txOutcomes,
		RelayEvents: relayEvents,
		gatherer:    reg,
	}
}

// TxHooks counts every finished unit of work.
func (m *Metrics) TxHooks() uow.Hooks {
	return uow.Hooks{OnFinish: func(o uow.Outcome) {
		m.TxOutcomes.WithLabelValues(string(o)).Inc()
	}}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
