package services

import (
	"context"
	"fmt"
	"time"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option ajusta dependências opcionais do serviço.
type Option func(*RateLimiterService)

func WithClock(clock ports.Clock) Option {
	return func(s *RateLimiterService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// RateLimiterService implementa a janela de tentativas de uma política nomeada.
type RateLimiterService struct {
	storage ports.AttemptStore
	policy  domain.RateLimitPolicy
	clock   ports.Clock
}

var _ ports.RateLimiter = (*RateLimiterService)(nil)

// NewRateLimiterService cria uma nova instância do serviço.
func NewRateLimiterService(storage ports.AttemptStore, policy domain.RateLimitPolicy, opts ...Option) (*RateLimiterService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	s := &RateLimiterService{storage: storage, policy: policy, clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RateLimiterService) Policy() domain.RateLimitPolicy {
	return s.policy
}

// Check registra a tentativa e devolve a decisão. Tentativas rejeitadas também
// são contabilizadas; quando a chave excede o limite retorna domain.ErrRateLimitExceeded.
func (s *RateLimiterService) Check(ctx context.Context, key string) (domain.Decision, error) {
	storageKey, err := s.buildKey(key)
	if err != nil {
		return domain.Decision{}, err
	}

	record, err := s.storage.Hit(ctx, storageKey, s.clock.Now().Unix(), s.policy.WindowSeconds())
	if err != nil {
		return domain.Decision{}, fmt.Errorf("record attempt for %s: %w", s.policy.Name, err)
	}

	decision := domain.Decision{
		Limited: record.Count > s.policy.MaxAttempts,
		Key:     storageKey,
		Policy:  s.policy,
		Record:  record,
	}
	if decision.Limited {
		return decision, domain.ErrRateLimitExceeded
	}
	return decision, nil
}

func (s *RateLimiterService) IsRateLimited(ctx context.Context, key string) (bool, error) {
	decision, err := s.Check(ctx, key)
	if err != nil && !domain.IsRateLimitError(err) {
		return false, err
	}
	return decision.Limited, nil
}

// Reset descarta o registro da chave, por exemplo após um login bem-sucedido.
func (s *RateLimiterService) Reset(ctx context.Context, key string) error {
	storageKey, err := s.buildKey(key)
	if err != nil {
		return err
	}
	return s.storage.Reset(ctx, storageKey)
}

// buildKey preserva a chave byte a byte: chaves que diferem só em caixa ou
// espaços são independentes.
func (s *RateLimiterService) buildKey(key string) (string, error) {
	if key == "" {
		return "", domain.ErrEmptyKey
	}
	return fmt.Sprintf("ratelimit:%s:%s", s.policy.Name, key), nil
}
