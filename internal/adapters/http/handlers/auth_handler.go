package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/httpx"
	"github.com/JeanGrijp/storefront-guard/internal/adapters/http/middleware"
	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (domain.Account, error)
}

type AuthHandler struct {
	accounts     Accounts
	loginLimiter ports.RateLimiter
	logger       *zap.Logger
	validate     *validator.Validate
}

func NewAuthHandler(accounts Accounts, loginLimiter ports.RateLimiter, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		accounts:     accounts,
		loginLimiter: loginLimiter,
		logger:       logger,
		validate:     newValidator(),
	}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Dados de cadastro inválidos")
		return
	}
	if err := validate(h.validate, req); err != nil {
		writeValidation(w, "Dados de cadastro inválidos", err)
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrMalformedInput):
		writeValidation(w, "Dados de cadastro inválidos", err)
		return
	case errors.Is(err, domain.ErrAccountExists):
		httpx.WriteError(w, http.StatusConflict, "Email já cadastrado")
		return
	default:
		h.logger.Error("register failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "Erro ao criar conta")
		return
	}

	h.logger.Info("account registered", zap.String("account_id", account.ID))
	httpx.WriteJSON(w, http.StatusCreated, accountResponse{ID: account.ID, Name: account.Name, Email: account.Email})
}

// Login autentica e, em caso de sucesso, zera as tentativas do IP no limiter de login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Dados de login inválidos")
		return
	}
	if err := validate(h.validate, req); err != nil {
		writeValidation(w, "Dados de login inválidos", err)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "Email ou senha inválidos")
		return
	default:
		h.logger.Error("login failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "Erro ao autenticar")
		return
	}

	if h.loginLimiter != nil {
		ip, ok := middleware.ClientIPFromContext(r.Context())
		if !ok {
			ip = middleware.ClientIP(r, false)
		}
		if err := h.loginLimiter.Reset(r.Context(), ip); err != nil {
			h.logger.Warn("login limiter reset failed", zap.String("ip", ip), zap.Error(err))
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"account": accountResponse{ID: account.ID, Name: account.Name, Email: account.Email},
	})
}

func writeValidation(w http.ResponseWriter, message string, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteValidationError(w, message, verr.Fields)
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, message)
}
