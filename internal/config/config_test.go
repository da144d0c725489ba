package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"haul-tracker/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HAUL_API_BASE", "HAUL_DEV_HOST", "HAUL_PAGE_HOST", "HAUL_STORE_PATH", "HAUL_ORIGIN", "HAUL_PLAN_REFRESH_INTERVAL", "HAUL_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	require.Equal(t, config.ProductionAPIBase, cfg.APIBase)
	require.Equal(t, "haul-tracker.db", cfg.StorePath)
	require.Equal(t, "PT Indonesia Koito", cfg.Origin)
	require.Equal(t, time.Minute, cfg.PlanRefreshInterval)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_explicitBaseWinsOverDevHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("HAUL_API_BASE", "http://192.168.1.3:3000/")
	t.Setenv("HAUL_DEV_HOST", "10.0.0.9")

	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	// Trailing slash is normalized away.
	require.Equal(t, "http://192.168.1.3:3000", cfg.APIBase)
}

func TestLoadConfig_devHostGetsSchemeAndPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("HAUL_DEV_HOST", "exp://192.168.1.3:8081")

	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	require.Equal(t, "http://192.168.1.3:3000", cfg.APIBase)
}

func TestLoadConfig_pageHostFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("HAUL_PAGE_HOST", "localhost")

	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000", cfg.APIBase)
}

func TestLoadConfig_invalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("HAUL_LOG_LEVEL", "verbose")

	_, err := config.LoadConfig(t.TempDir())

	require.Error(t, err)
	require.ErrorContains(t, err, "log_level")
}
