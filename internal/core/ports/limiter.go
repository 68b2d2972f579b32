// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"
	"time"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
)

type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
	Policy() domain.RateLimitPolicy
}

type Clock interface {
	Now() time.Time
}
