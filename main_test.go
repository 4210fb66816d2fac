package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/competitor-audit/api"
	"github.com/seo-optimizer/competitor-audit/audit"
	"github.com/seo-optimizer/competitor-audit/config"
	"github.com/seo-optimizer/competitor-audit/logging"
	"github.com/seo-optimizer/competitor-audit/middleware"
	"github.com/seo-optimizer/competitor-audit/providers"
	"github.com/seo-optimizer/competitor-audit/stats"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		GinMode:           gin.TestMode,
		DataDir:           dir,
		StatsFile:         filepath.Join(dir, "statistics.json"),
		StatsRetainMonths: 2,
		CORSAllowOrigins:  []string{"*"},
	}
}

func TestSetupRouter(t *testing.T) {
	cfg := testConfig(t)
	requestStats := logging.New(cfg.StatsFile, false)
	service := audit.NewService(nil, providers.Simulated{}, providers.Simulated{}, audit.Options{})
	r := setupRouter(cfg, api.NewHandler(service, requestStats), requestStats, middleware.NewRateLimiter(100, 100))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://app.test")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1, requestStats.GetUniqueVisitorsCount())
}

func TestScheduleMaintenance(t *testing.T) {
	cfg := testConfig(t)
	storage, err := stats.NewStorage(cfg.DataDir)
	require.NoError(t, err)
	defer storage.Shutdown()

	c := cron.New()
	err = scheduleMaintenance(c, cfg, storage, logging.New(cfg.StatsFile, false), middleware.NewRateLimiter(1, 1))
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		e.Job.Run()
	}
	assert.FileExists(t, cfg.StatsFile)
}
