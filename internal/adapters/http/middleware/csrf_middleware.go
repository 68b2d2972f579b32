package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
	"github.com/JeanGrijp/storefront-guard/internal/core/services"
	"github.com/JeanGrijp/storefront-guard/internal/metrics"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	invalidCSRFMessage = "Token CSRF inválido"
)

type CSRFConfig struct {
	APIPrefix      string
	ExemptPrefixes []string
	Logger         *zap.Logger
	Metrics        *metrics.GuardMetrics
}

// NewCSRFMiddleware exige X-CSRF-Token igual ao cookie csrf_token em requisições
// de mutação sob APIPrefix. Rotas contendo /auth/ e prefixos isentos são ignorados.
func NewCSRFMiddleware(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresCSRF(r, cfg) {
				next.ServeHTTP(w, r)
				return
			}

			var stored string
			if cookie, err := r.Cookie(CSRFCookieName); err == nil {
				stored = cookie.Value
			}

			if err := services.CheckCSRF(r.Header.Get(CSRFHeaderName), stored); err != nil {
				cfg.Logger.Info("csrf check failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				cfg.Metrics.Reject(metrics.ReasonCSRF)
				httpx.WriteError(w, http.StatusForbidden, invalidCSRFMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresCSRF(r *http.Request, cfg CSRFConfig) bool {
	if !isMutation(r.Method) {
		return false
	}
	path := r.URL.Path
	if !strings.HasPrefix(path, cfg.APIPrefix) || strings.Contains(path, "/auth/") {
		return false
	}
	for _, prefix := range cfg.ExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
