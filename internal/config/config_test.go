package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("HARDCOVER_TOKEN", "Bearer test-token")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HardcoverToken != "Bearer test-token" {
		t.Errorf("HardcoverToken = %q, want %q", cfg.HardcoverToken, "Bearer test-token")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HardcoverAPIURL != "https://api.hardcover.app/v1/graphql" {
		t.Errorf("HardcoverAPIURL = %q, want default endpoint", cfg.HardcoverAPIURL)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, 10*time.Second)
	}
	if cfg.UpstreamMaxSize != 1048576 {
		t.Errorf("UpstreamMaxSize = %d, want %d", cfg.UpstreamMaxSize, 1048576)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_OverrideValues(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("HARDCOVER_API_URL", "https://staging.hardcover.app/v1/graphql")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("UPSTREAM_MAX_SIZE", "2097152")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://dash.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HardcoverAPIURL != "https://staging.hardcover.app/v1/graphql" {
		t.Errorf("HardcoverAPIURL = %q", cfg.HardcoverAPIURL)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Errorf("UpstreamTimeout = %v, want 3s", cfg.UpstreamTimeout)
	}
	if cfg.UpstreamMaxSize != 2097152 {
		t.Errorf("UpstreamMaxSize = %d, want 2097152", cfg.UpstreamMaxSize)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.CORSAllowedOrigin != "https://dash.example.com" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_MissingToken_ReturnsError(t *testing.T) {
	t.Setenv("HARDCOVER_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when HARDCOVER_TOKEN is not set")
	}
	if !strings.Contains(err.Error(), "HARDCOVER_TOKEN") {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestLoad_InvalidDuration_FallsBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout = %v, want default 10s", cfg.UpstreamTimeout)
	}
}

func TestLoad_InvalidInt64_FallsBackToDefault(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("UPSTREAM_MAX_SIZE", "huge")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.UpstreamMaxSize != 1048576 {
		t.Errorf("UpstreamMaxSize = %d, want default 1048576", cfg.UpstreamMaxSize)
	}
}
