package services

import (
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
)

// GenerateCSRFToken emite um novo token para o cookie csrf_token.
func GenerateCSRFToken() string {
	return uuid.NewString()
}

// ValidateCSRFToken compara o token apresentado com o armazenado.
// Não há assinatura nem expiração: a validade é apenas igualdade.
func ValidateCSRFToken(token, storedToken string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(storedToken)) == 1
}

// CheckCSRF rejeita token ausente, cookie ausente ou divergência.
func CheckCSRF(token, storedToken string) error {
	switch {
	case token == "":
		return fmt.Errorf("%w: missing token", domain.ErrInvalidCSRFToken)
	case storedToken == "":
		return fmt.Errorf("%w: missing cookie", domain.ErrInvalidCSRFToken)
	case !ValidateCSRFToken(token, storedToken):
		return fmt.Errorf("%w: token mismatch", domain.ErrInvalidCSRFToken)
	}
	return nil
}
