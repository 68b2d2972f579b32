package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
)

type MessageHandler interface {
	HandleIncoming(ctx context.Context, msg domain.IncomingMessage) error
}

// WhatsAppHandler atende o handshake de verificação e as notificações de
// mensagens do webhook.
type WhatsAppHandler struct {
	messages    MessageHandler
	verifyToken string
	logger      *zap.Logger
	validate    *validator.Validate
}

func NewWhatsAppHandler(messages MessageHandler, verifyToken string, logger *zap.Logger) *WhatsAppHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppHandler{
		messages:    messages,
		verifyToken: verifyToken,
		logger:      logger,
		validate:    newValidator(),
	}
}

type webhookPayload struct {
	Object string         `json:"object" validate:"required"`
	Entry  []webhookEntry `json:"entry" validate:"required,dive"`
}

type webhookEntry struct {
	ID      string          `json:"id" validate:"required"`
	Changes []webhookChange `json:"changes" validate:"required,dive"`
}

type webhookChange struct {
	Value *webhookValue `json:"value" validate:"required"`
	Field string        `json:"field" validate:"required"`
}

type webhookValue struct {
	MessagingProduct string           `json:"messaging_product" validate:"required"`
	Metadata         *webhookMetadata `json:"metadata" validate:"required"`
	Contacts         []webhookContact `json:"contacts" validate:"omitempty,dive"`
	Messages         []webhookMessage `json:"messages" validate:"omitempty,dive"`
}

type webhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number" validate:"required"`
	PhoneNumberID      string `json:"phone_number_id" validate:"required"`
}

type webhookContact struct {
	Profile *struct {
		Name string `json:"name"`
	} `json:"profile" validate:"required"`
	WaID string `json:"wa_id" validate:"required"`
}

type webhookMessage struct {
	From      string `json:"from" validate:"required"`
	ID        string `json:"id" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text" validate:"omitempty"`
	Type string `json:"type" validate:"required"`
}

func (h *WhatsAppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, token := q.Get("hub.mode"), q.Get("hub.verify_token")
	if mode != "" && token != "" {
		h.verify(w, mode, token, q.Get("hub.challenge"))
		return
	}
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusBadRequest, "Formato de webhook inválido")
		return
	}

	var payload webhookPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Formato de webhook inválido")
		return
	}
	if err := validate(h.validate, payload); err != nil {
		h.logger.Debug("webhook payload rejected", zap.Error(err))
		httpx.WriteError(w, http.StatusBadRequest, "Formato de webhook inválido")
		return
	}

	for _, msg := range incomingMessages(payload) {
		if err := h.messages.HandleIncoming(r.Context(), msg); err != nil {
			h.logger.Error("webhook message failed", zap.String("from", msg.From), zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, "Erro ao processar webhook")
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WhatsAppHandler) verify(w http.ResponseWriter, mode, token, challenge string) {
	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		h.logger.Warn("webhook verification failed", zap.String("mode", mode))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Verification failed"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// incomingMessages extrai as mensagens de texto, associando cada mensagem ao
// contato de mesmo índice.
func incomingMessages(p webhookPayload) []domain.IncomingMessage {
	var out []domain.IncomingMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" || len(change.Value.Contacts) == 0 {
				continue
			}
			for i, m := range change.Value.Messages {
				if m.Type != "text" || m.Text == nil || m.Text.Body == "" {
					continue
				}
				var name string
				if i < len(change.Value.Contacts) {
					name = change.Value.Contacts[i].Profile.Name
				}
				out = append(out, domain.IncomingMessage{From: m.From, Name: name, Body: m.Text.Body})
			}
		}
	}
	return out
}
