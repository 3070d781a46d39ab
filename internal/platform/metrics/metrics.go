package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los collectors del servicio. Un *Metrics nil es válido
// (los métodos no hacen nada) para no obligar a los tests a registrar nada.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	transitions  *prometheus.CounterVec
	petStatus    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_application_transitions_total",
			Help: "Application status transitions applied by the adoption workflow.",
		}, []string{"from", "to"}),
		petStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_pet_status_changes_total",
			Help: "Pet status changes driven by the adoption workflow or admin overrides.",
		}, []string{"to", "source"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.transitions, m.petStatus)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ApplicationTransition cuenta transiciones; n permite registrar cascadas en bloque.
func (m *Metrics) ApplicationTransition(from, to string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transitions.WithLabelValues(from, to).Add(float64(n))
}

func (m *Metrics) PetStatusChanged(to, source string) {
	if m == nil {
		return
	}
	m.petStatus.WithLabelValues(to, source).Inc()
}
