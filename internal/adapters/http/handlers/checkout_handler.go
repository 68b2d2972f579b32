package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/middleware"
	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/services"
)

type PaymentProcessor interface {
	Process(ctx context.Context, payment domain.Payment) (domain.PaymentResult, error)
}

type CheckoutHandler struct {
	processor     PaymentProcessor
	allowedOrigin string
	logger        *zap.Logger
	validate      *validator.Validate
}

func NewCheckoutHandler(processor PaymentProcessor, allowedOrigin string, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		processor:     processor,
		allowedOrigin: allowedOrigin,
		logger:        logger,
		validate:      newValidator(),
	}
}

type cardDetailsRequest struct {
	Number   string `json:"number" validate:"required,len=16,number"`
	Name     string `json:"name" validate:"required,min=3"`
	ExpMonth string `json:"expMonth" validate:"required,oneof=01 02 03 04 05 06 07 08 09 10 11 12"`
	ExpYear  string `json:"expYear" validate:"required,len=4,number"`
	CVV      string `json:"cvv" validate:"required,min=3,max=4,number"`
}

type checkoutRequest struct {
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=credit pix boleto"`
	Amount        float64             `json:"amount" validate:"gt=0"`
	OrderID       string              `json:"orderId" validate:"required"`
	CardDetails   *cardDetailsRequest `json:"cardDetails" validate:"omitempty"`
	CSRFToken     string              `json:"csrfToken"`
}

type checkoutResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if h.allowedOrigin != "" && !strings.Contains(origin, h.allowedOrigin) {
		h.logger.Warn("checkout origin rejected", zap.String("origin", origin))
		httpx.WriteError(w, http.StatusForbidden, "Origem não autorizada")
		return
	}

	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// JSON malformado é erro do cliente: 400, não o 500 genérico de processamento.
		httpx.WriteError(w, http.StatusBadRequest, "Dados de pagamento inválidos")
		return
	}

	var stored string
	if c, err := r.Cookie(middleware.CSRFCookieName); err == nil {
		stored = c.Value
	}
	if err := services.CheckCSRF(req.CSRFToken, stored); err != nil {
		h.logger.Warn("checkout csrf rejected", zap.Error(err))
		httpx.WriteError(w, http.StatusForbidden, "Token CSRF inválido")
		return
	}

	if err := validate(h.validate, req); err != nil {
		writeValidation(w, "Dados de pagamento inválidos", err)
		return
	}
	if req.PaymentMethod == string(domain.PaymentCredit) && req.CardDetails == nil {
		httpx.WriteValidationError(w, "Dados de pagamento inválidos", map[string]string{"cardDetails": "required"})
		return
	}

	result, err := h.processor.Process(r.Context(), toPayment(req))
	if err != nil {
		h.logger.Error("checkout failed", zap.String("order_id", req.OrderID), zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "Erro ao processar pagamento")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, checkoutResponse{
		Success:       true,
		TransactionID: result.TransactionID,
		Status:        result.Status,
		Message:       "Pagamento processado com sucesso",
	})
}

func toPayment(req checkoutRequest) domain.Payment {
	p := domain.Payment{
		Method:  domain.PaymentMethod(req.PaymentMethod),
		Amount:  req.Amount,
		OrderID: req.OrderID,
	}
	if c := req.CardDetails; c != nil {
		p.Card = &domain.CardDetails{
			Number:   c.Number,
			Name:     c.Name,
			ExpMonth: c.ExpMonth,
			ExpYear:  c.ExpYear,
			CVV:      c.CVV,
		}
	}
	return p
}
