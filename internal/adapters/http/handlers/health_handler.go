// Package handlers agrupa os handlers HTTP da loja.
package handlers

import (
	"net/http"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
)

// HealthHandler responde com uma mensagem simples para verificação de disponibilidade.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
