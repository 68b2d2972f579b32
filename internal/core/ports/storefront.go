package ports

import (
	"context"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
)

type PaymentGateway interface {
	Charge(ctx context.Context, payment domain.Payment) (domain.PaymentResult, error)
}

type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

type OrderStatusLookup func(ctx context.Context, orderNumber string) (string, error)
