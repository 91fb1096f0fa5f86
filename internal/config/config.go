// Package config resolves the gateway's environment and option surface
// (spec.md §6) into a single Config, generalizing the teacher's
// free-standing getenv(key, default) helper read once in main into a
// struct built by FromEnv.
package config

import (
	"os"
	"strconv"
	"time"

	"ecomm/api-gateway/internal/liveness"
	"ecomm/api-gateway/internal/retry"
)

// Config is every option spec.md §6 names, resolved from the
// environment (or defaulted).
type Config struct {
	Port                    string
	RegistryURL             string
	RegistryHealthPath      string
	RegistrationKey         string
	LogLevel                string
	Domain                  string
	RedisAddr               string
	AdminJWTSecret          string
	LoadBalancerStrategy    string // "round-robin" | "random"
	RequestTimeout          time.Duration
	TotalRequestTimeout     time.Duration
	HealthChecksEnabled     bool
	HealthCheckInterval     time.Duration
	HealthCheckFailStrategy liveness.FailStrategy
	Retry                   retry.Config
}

// FromEnv reads the fixed env surface plus spec.md §6's configuration
// options, applying the documented defaults for anything unset.
func FromEnv() Config {
	cfg := Config{
		Port:                    getenv("PORT", "3001"),
		RegistryURL:             getenv("REGISTRY_URL", "http://localhost:3002"),
		RegistryHealthPath:      getenv("REGISTRY_HEALTH_PATH", "/health"),
		RegistrationKey:         getenv("SERVICE_REGISTRATION_KEY", ""),
		LogLevel:                getenv("LOG_LEVEL", "info"),
		Domain:                  getenv("DOMAIN", ""),
		RedisAddr:               getenv("REDIS_ADDR", ""),
		AdminJWTSecret:          getenv("ADMIN_JWT_SECRET", ""),
		LoadBalancerStrategy:    getenv("LOAD_BALANCER_STRATEGY", "random"),
		RequestTimeout:          getenvMillis("REQUEST_TIMEOUT_MS", 5000),
		TotalRequestTimeout:     getenvMillis("TOTAL_REQUEST_TIMEOUT_MS", 10000),
		HealthChecksEnabled:     getenvBool("HEALTH_CHECKS_ENABLED", true),
		HealthCheckInterval:     getenvMillis("HEALTH_CHECK_INTERVAL_MS", 10000),
		HealthCheckFailStrategy: liveness.FailStrategy(getenv("HEALTH_CHECK_FAIL_STRATEGY", string(liveness.TryAgain))),
		Retry: retry.Config{
			MaxRetries: getenvInt("RETRY_MAX_RETRIES", 3),
			BaseDelay:  getenvMillis("RETRY_BASE_DELAY_MS", 1000),
			MaxDelay:   getenvMillis("RETRY_MAX_DELAY_MS", 5000),
			RetryableStatus: map[int]bool{
				500: true, 502: true, 503: true, 504: true,
			},
		},
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvMillis(key string, defMillis int) time.Duration {
	return time.Duration(getenvInt(key, defMillis)) * time.Millisecond
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
