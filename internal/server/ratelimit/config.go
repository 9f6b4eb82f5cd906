package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig sets the budget for one route. A Path ending in "/" acts
// as a prefix pattern; Burst falls back to Limit when zero.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// LoadConfig reads the limiter configuration from RATE_LIMIT_* environment
// variables, falling back to built-in defaults for anything unset or
// unparseable.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       clientSet(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       clientSet(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route budgets. Routes without an
// entry use the default limit; the health check bypasses limiting in the
// matcher.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Monte Carlo runs are the expensive tier.
		{Path: "/assessments", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/assessments/stream", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/simulate", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		// Single-shot computations.
		{Path: "/score", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/match", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/diagnostics", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},

		// Stored assessment deletion, matched by prefix.
		{Path: "/assessments/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// clientSet turns a comma-separated list of client addresses into a
// membership set.
func clientSet(csv string) map[string]bool {
	set := make(map[string]bool)
	for _, entry := range strings.Split(csv, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			set[entry] = true
		}
	}
	return set
}
