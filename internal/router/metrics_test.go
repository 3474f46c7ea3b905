package router

import (
	"testing"

	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	e := newTestEngine(t, WithMetrics(m))

	_, err := e.Route(codes.Dissociation, Annotations{})
	require.NoError(t, err)
	_, err = e.Route(codes.ExhaustionPorous, Annotations{})
	require.NoError(t, err)
	_, err = e.Route("ERROR_999", Annotations{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.routes.WithLabelValues(codes.Dissociation, OutcomeActive)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routes.WithLabelValues(codes.ExhaustionPorous, OutcomeBlocked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.routes.WithLabelValues(OutcomeUnknown, OutcomeUnknown)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRoutes))

	e.Resolve(codes.Dissociation)
	e.Resolve("ERROR_999")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues(codes.Dissociation)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRoutes))

	e.Diagnose(map[string]float64{"boundary_permeability": 0.8, "recovery_rate": 0.2})
	e.Diagnose(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diagnoses.WithLabelValues(string(DiagnosisPorous))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diagnoses.WithLabelValues(string(DiagnosisDepleted))))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeRoute("c", OutcomeActive)
		m.observeResolve("c")
		m.observeDiagnosis(DiagnosisPorous)
		m.setActive(3)
	})
}
