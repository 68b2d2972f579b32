package middleware

import (
	"net/http"
	"strings"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
)

// RequireAJAX aceita apenas requisições com X-Requested-With: XMLHttpRequest e,
// quando houver Content-Type, do tipo JSON.
func RequireAJAX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ValidAJAXHeaders(r.Header) {
			httpx.WriteError(w, http.StatusBadRequest, "Requisição inválida")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ValidAJAXHeaders(h http.Header) bool {
	if h.Get("X-Requested-With") != "XMLHttpRequest" {
		return false
	}
	contentType := h.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "application/json") {
		return false
	}
	return true
}
