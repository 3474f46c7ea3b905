package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Route outcomes used as metric labels
const (
	OutcomeActive  = "active"
	OutcomeBlocked = "blocked"
	OutcomeUnknown = "unknown"
)

// Metrics holds the engine's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	routes       *prometheus.CounterVec
	resolves     *prometheus.CounterVec
	diagnoses    *prometheus.CounterVec
	activeRoutes prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		routes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_routes_total",
			Help: "Total route attempts by code and outcome",
		}, []string{"code", "outcome"}),

		resolves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_resolves_total",
			Help: "Total resolve calls by code",
		}, []string{"code"}),

		diagnoses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_diagnoses_total",
			Help: "Total diagnoses by result",
		}, []string{"result"}),

		activeRoutes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nexus_active_routes",
			Help: "Number of currently active routes",
		}),
	}
}

func (m *Metrics) observeRoute(code, outcome string) {
	if m == nil {
		return
	}
	m.routes.WithLabelValues(code, outcome).Inc()
}

func (m *Metrics) observeResolve(code string) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(code).Inc()
}

func (m *Metrics) observeDiagnosis(d Diagnosis) {
	if m == nil {
		return
	}
	m.diagnoses.WithLabelValues(string(d)).Inc()
}

func (m *Metrics) setActive(n int) {
	if m == nil {
		return
	}
	m.activeRoutes.Set(float64(n))
}
