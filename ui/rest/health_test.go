package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AzielCF/az-plant/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	app := fiber.New()
	InitRestHealth(app.Group("/api"), Health{
		Version: "v1.0.0",
		collect: func(ctx context.Context, dir string) HostStats {
			return HostStats{Hostname: "raspberrypi", Goroutines: 3}
		},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res := decodeResponse(t, resp.Body).Results.(map[string]any)
	assert.Equal(t, "ok", res["status"])
	assert.Equal(t, "disabled", res["valkey"])
	assert.Equal(t, "raspberrypi", res["host"].(map[string]any)["hostname"])
}

func TestCollectHostStats(t *testing.T) {
	stats := collectHostStats(context.Background(), t.TempDir())
	assert.Positive(t, stats.Goroutines)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ObserveCycle(0, nil)

	app := fiber.New()
	InitRestMetrics(app, m)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "plant_monitor_cycles_total"))
}
