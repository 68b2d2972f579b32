package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
	"github.com/JeanGrijp/storefront-guard/internal/metrics"
)

type GuardConfig struct {
	APIPrefix          string
	TrustProxyHeaders  bool
	CSRFExemptPrefixes []string
	LoginPaths         []string
	APILimiter         ports.RateLimiter
	LoginLimiter       ports.RateLimiter
	Logger             *zap.Logger
	Metrics            *metrics.GuardMetrics
}

// NewGuard monta a cadeia headers -> rate limit -> CSRF -> handler.
// Cada verificação encerra a requisição na primeira falha.
func NewGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	rateLimit := NewRateLimiterMiddleware(RateLimiterConfig{
		APIPrefix:         cfg.APIPrefix,
		LoginPaths:        cfg.LoginPaths,
		API:               cfg.APILimiter,
		Login:             cfg.LoginLimiter,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		Logger:            cfg.Logger,
		Metrics:           cfg.Metrics,
	})
	csrf := NewCSRFMiddleware(CSRFConfig{
		APIPrefix:      cfg.APIPrefix,
		ExemptPrefixes: cfg.CSRFExemptPrefixes,
		Logger:         cfg.Logger,
		Metrics:        cfg.Metrics,
	})

	return func(next http.Handler) http.Handler {
		chain := SecurityHeaders(rateLimit(csrf(next)))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r, cfg.TrustProxyHeaders)
			chain.ServeHTTP(w, r.WithContext(withClientIP(r.Context(), ip)))
		})
	}
}
