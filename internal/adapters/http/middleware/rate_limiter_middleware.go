// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
	"github.com/JeanGrijp/storefront-guard/internal/metrics"
)

const (
	apiRateLimitMessage   = "Muitas requisições. Tente novamente mais tarde."
	loginRateLimitMessage = "Muitas tentativas de login. Tente novamente mais tarde."
	internalErrorMessage  = "Erro interno. Tente novamente mais tarde."
)

var DefaultLoginPaths = []string{"/api/auth/login", "/api/auth/register"}

type RateLimiterConfig struct {
	APIPrefix         string
	LoginPaths        []string
	API               ports.RateLimiter
	Login             ports.RateLimiter
	TrustProxyHeaders bool
	Logger            *zap.Logger
	Metrics           *metrics.GuardMetrics
}

// NewRateLimiterMiddleware consulta o limiter geral para rotas sob APIPrefix e,
// em POST para login/registro, também o limiter de login.
func NewRateLimiterMiddleware(cfg RateLimiterConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}
	if cfg.LoginPaths == nil {
		cfg.LoginPaths = DefaultLoginPaths
	}
	loginPaths := make(map[string]bool, len(cfg.LoginPaths))
	for _, p := range cfg.LoginPaths {
		loginPaths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, ok := ClientIPFromContext(r.Context())
			if !ok {
				ip = ClientIP(r, cfg.TrustProxyHeaders)
			}

			if cfg.API != nil && strings.HasPrefix(r.URL.Path, cfg.APIPrefix) {
				if !check(w, r, cfg, cfg.API, ip, metrics.ReasonAPIRateLimit, apiRateLimitMessage) {
					return
				}
			}

			if cfg.Login != nil && r.Method == http.MethodPost && loginPaths[r.URL.Path] {
				if !check(w, r, cfg, cfg.Login, ip, metrics.ReasonLoginRateLimit, loginRateLimitMessage) {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func check(w http.ResponseWriter, r *http.Request, cfg RateLimiterConfig, limiter ports.RateLimiter, ip, reason, message string) bool {
	limited, err := limiter.IsRateLimited(r.Context(), ip)
	if err != nil {
		cfg.Logger.Error("rate limiter failed",
			zap.String("policy", limiter.Policy().Name),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		cfg.Metrics.Reject(metrics.ReasonLimiterError)
		httpx.WriteError(w, http.StatusInternalServerError, internalErrorMessage)
		return false
	}
	if limited {
		cfg.Logger.Info("rate limit exceeded",
			zap.String("policy", limiter.Policy().Name),
			zap.String("ip", ip),
			zap.String("path", r.URL.Path))
		cfg.Metrics.Reject(reason)
		httpx.WriteError(w, http.StatusTooManyRequests, message)
		return false
	}
	return true
}
