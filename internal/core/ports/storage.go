// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
)

// AttemptStore persiste os registros de tentativas por chave.
// Hit deve aplicar domain.AttemptRecord.Next de forma atômica por chave.
type AttemptStore interface {
	Hit(ctx context.Context, key string, now, windowSeconds int64) (domain.AttemptRecord, error)
	Reset(ctx context.Context, key string) error
}
