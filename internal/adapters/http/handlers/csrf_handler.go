package handlers

import (
	"net/http"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/middleware"
	"github.com/JeanGrijp/storefront-guard/internal/core/services"
)

// CSRFHandler emite o token anti-CSRF no cookie csrf_token. O cookie não é
// HttpOnly porque o cliente precisa ecoá-lo no cabeçalho X-CSRF-Token.
type CSRFHandler struct {
	CookieSecure bool
}

func (h CSRFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := services.GenerateCSRFToken()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}
