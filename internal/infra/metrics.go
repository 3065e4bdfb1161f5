package infra

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	VendasRegistradas prometheus.Counter
	VendasFalhas      *prometheus.CounterVec
	VendasValorTotal  prometheus.Counter
	ConflitosEstoque  prometheus.Counter

	RecibosProcessados *prometheus.CounterVec
}

// NewMetrics builds a private registry with Go/process collectors plus the
// application metrics, all under the "pdv" namespace.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pdv",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pdv",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	m.VendasRegistradas = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pdv",
		Name:      "vendas_registradas_total",
		Help:      "Sales committed",
	})

	m.VendasFalhas = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pdv",
		Name:      "vendas_falhas_total",
		Help:      "Sales that failed, by reason",
	}, []string{"motivo"})

	m.VendasValorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pdv",
		Name:      "vendas_valor_total",
		Help:      "Sum of committed sale totals",
	})

	m.ConflitosEstoque = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pdv",
		Name:      "estoque_conflitos_total",
		Help:      "Stock compare-and-set attempts lost to a concurrent writer",
	})

	m.RecibosProcessados = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pdv",
		Name:      "recibos_processados_total",
		Help:      "Receipt jobs processed, by outcome",
	}, []string{"status"})

	reg.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.VendasRegistradas, m.VendasFalhas, m.VendasValorTotal, m.ConflitosEstoque,
		m.RecibosProcessados,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordVenda counts a committed sale; total is its value in currency units.
func (m *Metrics) RecordVenda(total float64) {
	if m == nil {
		return
	}
	m.VendasRegistradas.Inc()
	m.VendasValorTotal.Add(total)
}

func (m *Metrics) RecordVendaFalha(motivo string) {
	if m == nil {
		return
	}
	m.VendasFalhas.WithLabelValues(motivo).Inc()
}

func (m *Metrics) RecordConflitoEstoque() {
	if m == nil {
		return
	}
	m.ConflitosEstoque.Inc()
}

func (m *Metrics) RecordRecibo(status string) {
	if m == nil {
		return
	}
	m.RecibosProcessados.WithLabelValues(status).Inc()
}
