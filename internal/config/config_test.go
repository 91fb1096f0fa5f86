package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t, "PORT", "REGISTRY_URL", "REGISTRY_HEALTH_PATH", "LOG_LEVEL",
		"LOAD_BALANCER_STRATEGY", "REQUEST_TIMEOUT_MS", "TOTAL_REQUEST_TIMEOUT_MS",
		"HEALTH_CHECKS_ENABLED", "HEALTH_CHECK_INTERVAL_MS", "HEALTH_CHECK_FAIL_STRATEGY")

	cfg := FromEnv()

	if cfg.Port != "3001" {
		t.Fatalf("expected default port 3001, got %q", cfg.Port)
	}
	if cfg.RegistryURL != "http://localhost:3002" {
		t.Fatalf("expected default registry URL, got %q", cfg.RegistryURL)
	}
	if cfg.RegistryHealthPath != "/health" {
		t.Fatalf("expected default health path /health, got %q", cfg.RegistryHealthPath)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected default request timeout 5s, got %v", cfg.RequestTimeout)
	}
	if cfg.TotalRequestTimeout != 10*time.Second {
		t.Fatalf("expected default total timeout 10s, got %v", cfg.TotalRequestTimeout)
	}
	if !cfg.HealthChecksEnabled {
		t.Fatalf("expected health checks enabled by default")
	}
}

func TestFromEnv_OverridesFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REGISTRY_URL", "http://registry.internal:4000")
	t.Setenv("REQUEST_TIMEOUT_MS", "2500")
	t.Setenv("HEALTH_CHECKS_ENABLED", "false")

	cfg := FromEnv()

	if cfg.Port != "9090" {
		t.Fatalf("expected overridden port, got %q", cfg.Port)
	}
	if cfg.RegistryURL != "http://registry.internal:4000" {
		t.Fatalf("expected overridden registry URL, got %q", cfg.RegistryURL)
	}
	if cfg.RequestTimeout != 2500*time.Millisecond {
		t.Fatalf("expected overridden request timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.HealthChecksEnabled {
		t.Fatalf("expected health checks disabled")
	}
}

func TestGetenvInt_FallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("RETRY_MAX_RETRIES", "not-a-number")
	if got := getenvInt("RETRY_MAX_RETRIES", 3); got != 3 {
		t.Fatalf("expected fallback to default on invalid int, got %d", got)
	}
}

func TestGetenvBool_FallsBackOnInvalidValue(t *testing.T) {
	t.Setenv("HEALTH_CHECKS_ENABLED", "not-a-bool")
	if got := getenvBool("HEALTH_CHECKS_ENABLED", true); got != true {
		t.Fatalf("expected fallback to default on invalid bool, got %v", got)
	}
}
