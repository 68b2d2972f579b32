package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "STORAGE_TYPE", "RATE_LIMIT_LOGIN_MAX_ATTEMPTS", "RATE_LIMIT_LOGIN_WINDOW_SECONDS",
		"RATE_LIMIT_API_MAX_ATTEMPTS", "RATE_LIMIT_API_WINDOW_SECONDS", "CSRF_EXEMPT_PREFIXES",
		"TRUST_PROXY_HEADERS", "API_PREFIX", "CSRF_COOKIE_SECURE", "REQUIRE_AJAX_HEADERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RateLimiter.Login.MaxAttempts != 5 || cfg.RateLimiter.Login.Window != 15*time.Minute {
		t.Fatalf("unexpected login policy %+v", cfg.RateLimiter.Login)
	}
	if cfg.RateLimiter.API.MaxAttempts != 100 || cfg.RateLimiter.API.Window != time.Minute {
		t.Fatalf("unexpected api policy %+v", cfg.RateLimiter.API)
	}
	if cfg.Storage.Type != "memory" {
		t.Fatalf("expected memory storage by default, got %q", cfg.Storage.Type)
	}
	if cfg.Guard.APIPrefix != "/api/" || cfg.Guard.TrustProxyHeaders || cfg.Guard.CSRFCookieSecure || cfg.Guard.RequireAJAX {
		t.Fatalf("unexpected guard config %+v", cfg.Guard)
	}
	if len(cfg.Guard.CSRFExemptPrefixes) != 0 {
		t.Fatalf("expected no csrf exemptions, got %v", cfg.Guard.CSRFExemptPrefixes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORAGE_TYPE", "Redis")
	t.Setenv("RATE_LIMIT_LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("RATE_LIMIT_LOGIN_WINDOW_SECONDS", "120")
	t.Setenv("CSRF_EXEMPT_PREFIXES", " /api/webhook/ ,, /api/public/")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Type != "redis" {
		t.Fatalf("expected redis storage, got %q", cfg.Storage.Type)
	}
	if cfg.RateLimiter.Login.MaxAttempts != 3 || cfg.RateLimiter.Login.Window != 2*time.Minute {
		t.Fatalf("unexpected login policy %+v", cfg.RateLimiter.Login)
	}
	if got := strings.Join(cfg.Guard.CSRFExemptPrefixes, "|"); got != "/api/webhook/|/api/public/" {
		t.Fatalf("unexpected exempt prefixes %q", got)
	}
	if !cfg.Guard.TrustProxyHeaders || !cfg.Guard.CSRFCookieSecure || !cfg.IsProd() {
		t.Fatalf("unexpected guard config %+v", cfg.Guard)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"RATE_LIMIT_API_MAX_ATTEMPTS":   "many",
		"RATE_LIMIT_API_WINDOW_SECONDS": "0",
		"REDIS_PORT":                    "redis",
		"STORAGE_TYPE":                  "postgres",
		"APP_ENV":                       "staging",
		"API_PREFIX":                    "api",
		"TRUST_PROXY_HEADERS":           "sometimes",
		"RATE_LIMIT_LOGIN_MAX_ATTEMPTS": "-1",
		"REQUIRE_AJAX_HEADERS":          "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
