package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aescanero/nexus-router/internal/codes"
	"github.com/aescanero/nexus-router/internal/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedStats Stats

func (f fixedStats) Stats() Stats { return Stats(f) }

func TestHealthEndpoints(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	engine := router.NewEngine(codes.Default(), zap.NewNop(), router.WithMetrics(router.NewMetrics(reg)))
	_, err := engine.Route(codes.Dissociation, router.Annotations{})
	require.NoError(t, err)

	stats := fixedStats{Processed: 1, ActiveRoutes: 1, Blocking: codes.Dissociation}
	srv := httptest.NewServer(NewHealthServer(0, client, stats, reg, zap.NewNop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Checks["redis"])
	require.NotNil(t, health.Engine)
	assert.Equal(t, codes.Dissociation, health.Engine.Blocking)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	var ready HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", ready.Status)
	require.NotNil(t, ready.Engine)
	assert.Equal(t, int64(1), ready.Engine.ActiveRoutes)
	assert.Equal(t, codes.Dissociation, ready.Engine.Blocking)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `nexus_routes_total{code="ERROR_001",outcome="active"} 1`)
	assert.Contains(t, string(body), "nexus_active_routes 1")
}

func TestHealthRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	hs := NewHealthServer(0, client, fixedStats{}, prometheus.NewRegistry(), zap.NewNop())
	srv := httptest.NewServer(hs.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	assert.NoError(t, hs.Stop(context.Background()))
}
