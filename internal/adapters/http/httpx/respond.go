// Package httpx reúne helpers de resposta JSON usados por middlewares e handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError escreve {"error": message} com o status informado.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorBody{Error: message})
}

func WriteValidationError(w http.ResponseWriter, message string, details map[string]string) {
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: message, Details: details})
}
