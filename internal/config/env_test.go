package config

import (
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ADDR", "BACKEND_URL", "BACKEND_TIMEOUT", "CORS_ALLOWED_ORIGINS", "TOKEN_COOKIE", "CACHE_TTL"} {
		t.Setenv(k, "")
	}

	env := LoadEnv()
	if env.AppAddr != ":8080" {
		t.Fatalf("unexpected addr %q", env.AppAddr)
	}
	if env.BackendURL != "http://localhost:8000" {
		t.Fatalf("unexpected backend url %q", env.BackendURL)
	}
	if env.BackendTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", env.BackendTimeout)
	}
	if env.TokenCookie != "token" {
		t.Fatalf("unexpected cookie %q", env.TokenCookie)
	}
	if len(env.CORSOrigins) == 0 {
		t.Fatalf("expected default origins")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://loans.example.com/")
	t.Setenv("BACKEND_TIMEOUT", "7")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("BACKEND_RETRY_MAX", "-3")

	env := LoadEnv()
	if env.BackendURL != "https://loans.example.com" {
		t.Fatalf("trailing slash not trimmed: %q", env.BackendURL)
	}
	if env.BackendTimeout != 7*time.Second {
		t.Fatalf("bare seconds not parsed: %v", env.BackendTimeout)
	}
	if env.CacheTTL != 2*time.Minute {
		t.Fatalf("duration not parsed: %v", env.CacheTTL)
	}
	if len(env.CORSOrigins) != 2 || env.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", env.CORSOrigins)
	}
	if env.BackendRetryMax != 2 {
		t.Fatalf("negative retry max should fall back, got %d", env.BackendRetryMax)
	}
}
