package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

const minPasswordLength = 8

// AccountService mantém contas em memória com senhas em bcrypt.
type AccountService struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	cost     int
	clock    ports.Clock
}

func NewAccountService(cost int) *AccountService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{
		accounts: make(map[string]domain.Account),
		cost:     cost,
		clock:    systemClock{},
	}
}

func (s *AccountService) Register(_ context.Context, name, email, password string) (domain.Account, error) {
	name = SanitizeInput(name)
	email = normalizeEmail(email)

	fields := map[string]string{}
	if len([]rune(name)) < 2 {
		fields["name"] = "O nome deve ter pelo menos 2 caracteres"
	}
	if !validEmail(email) {
		fields["email"] = "Email inválido"
	}
	if msg := PasswordProblem(password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		return domain.Account{}, &domain.ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return domain.Account{}, domain.ErrAccountExists
	}
	account := domain.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}
	s.accounts[email] = account
	return account, nil
}

func (s *AccountService) Authenticate(_ context.Context, email, password string) (domain.Account, error) {
	s.mu.RLock()
	account, ok := s.accounts[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return domain.Account{}, domain.ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("compare password: %w", err)
	}
	return account, nil
}

// PasswordProblem devolve a primeira regra de força de senha violada, ou "".
func PasswordProblem(password string) string {
	if len(password) < minPasswordLength {
		return "A senha deve ter pelo menos 8 caracteres"
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	switch {
	case !upper:
		return "A senha deve conter pelo menos uma letra maiúscula"
	case !lower:
		return "A senha deve conter pelo menos uma letra minúscula"
	case !digit:
		return "A senha deve conter pelo menos um número"
	case !special:
		return "A senha deve conter pelo menos um caractere especial"
	}
	return ""
}

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
