// Package config loads application configuration with viper. Values come
// from environment variables (HAUL_ prefix) with an optional
// haul-tracker.yaml file underneath, env taking precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProductionAPIBase is the last-resort API base when nothing else in the
// resolution chain yields a host.
const ProductionAPIBase = "https://www.dycode.web.id"

// Config holds every setting the driver client needs. APIBase is fully
// resolved by Load; the rest of the app never re-runs the resolution
// chain.
type Config struct {
	// APIBase is the scheme://host[:port] all API calls are made against.
	APIBase string `mapstructure:"api_base"`

	// DevHost is a development machine host (no scheme, no port). When
	// set and no explicit APIBase is configured, the client talks to
	// http://<DevHost>:3000.
	DevHost string `mapstructure:"dev_host"`

	// PageHost mirrors the web build's current-page host, the
	// next-to-last resolution fallback.
	PageHost string `mapstructure:"page_host"`

	// StorePath is the SQLite file backing the local trip store.
	StorePath string `mapstructure:"store_path"`

	// Origin is the fixed plant name used as the forward leg's origin
	// and the reverse leg's destination.
	Origin string `mapstructure:"origin"`

	// PlanRefreshInterval is the period of the silent plan refresh loop.
	PlanRefreshInterval time.Duration `mapstructure:"plan_refresh_interval"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig reads configuration from the environment and an optional
// haul-tracker.yaml in the given path, then resolves the API base.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("haul-tracker")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetEnvPrefix("HAUL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store_path", "haul-tracker.db")
	v.SetDefault("origin", "PT Indonesia Koito")
	v.SetDefault("plan_refresh_interval", time.Minute)
	v.SetDefault("log_level", "info")

	// Binding explicitly so env vars apply even when the key is absent
	// from the config file.
	for _, key := range []string{"api_base", "dev_host", "page_host", "store_path", "origin", "plan_refresh_interval", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("config.LoadConfig: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has env defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config.LoadConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.LoadConfig: %w", err)
	}

	cfg.APIBase = resolveAPIBase(cfg)

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("config.LoadConfig: invalid log_level %q", cfg.LogLevel)
	}

	return cfg, nil
}

// resolveAPIBase picks the API base once, in priority order: explicit
// setting, development host, current page host, production fallback.
// Hosts may arrive with a scheme or port attached; only the bare host is
// kept before the dev port is appended.
func resolveAPIBase(cfg Config) string {
	if base := strings.TrimSpace(cfg.APIBase); base != "" {
		return strings.TrimRight(base, "/")
	}
	if host := extractHost(cfg.DevHost); host != "" {
		return fmt.Sprintf("http://%s:3000", host)
	}
	if host := extractHost(cfg.PageHost); host != "" {
		return fmt.Sprintf("http://%s:3000", host)
	}
	return ProductionAPIBase
}

// extractHost strips any scheme and port from a host string, e.g.
// "exp://192.168.1.3:8081" -> "192.168.1.3".
func extractHost(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for _, prefix := range []string{"exp://", "http://", "https://"} {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	host, _, found := strings.Cut(cleaned, ":")
	if !found {
		host = cleaned
	}
	return host
}
