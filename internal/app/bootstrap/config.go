// Package bootstrap holds the process wiring shared by the API, the worker, and the migrator.
package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the order processes.
type Config struct {
	Port              string
	PostgresDSN       string
	AutoMigrate       bool
	SlowQuery         time.Duration
	MaxOpenConns      int
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	ShutdownTimeout   time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		AutoMigrate:       isTruthy(os.Getenv("DB_AUTO_MIGRATE")),
		SlowQuery:         200 * time.Millisecond,
		MaxOpenConns:      10,
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		ShutdownTimeout:   10 * time.Second,
	}
	if ms, ok, err := positiveInt("DB_SLOW_QUERY_MS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.SlowQuery = time.Duration(ms) * time.Millisecond
	}
	if n, ok, err := positiveInt("DB_MAX_OPEN_CONNS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.MaxOpenConns = n
	}
	if secs, ok, err := positiveInt("SHUTDOWN_TIMEOUT_SECONDS"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.ShutdownTimeout = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func positiveInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, true, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
