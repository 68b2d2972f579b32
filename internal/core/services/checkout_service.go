package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
	"github.com/JeanGrijp/storefront-guard/internal/logger"
)

// CheckoutService processa o pagamento e envia a confirmação ao cliente.
type CheckoutService struct {
	gateway   ports.PaymentGateway
	messenger ports.Messenger
	logger    *zap.Logger
}

func NewCheckoutService(gateway ports.PaymentGateway, messenger ports.Messenger, log *zap.Logger) (*CheckoutService, error) {
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{gateway: gateway, messenger: messenger, logger: log}, nil
}

func (s *CheckoutService) Process(ctx context.Context, payment domain.Payment) (domain.PaymentResult, error) {
	if payment.Card != nil {
		payment.Card.Name = SanitizeInput(payment.Card.Name)
	}

	result, err := s.gateway.Charge(ctx, payment)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("charge order %s: %w", payment.OrderID, err)
	}

	fields := []zap.Field{
		zap.String("order_id", payment.OrderID),
		zap.String("method", string(payment.Method)),
		zap.Float64("amount", payment.Amount),
		zap.String("transaction_id", result.TransactionID),
		zap.String("status", result.Status),
	}
	if payment.Card != nil {
		fields = append(fields, zap.String("card", logger.MaskValue(payment.Card.Number)))
	}
	s.logger.Info("transaction saved", fields...)

	// A confirmação é best-effort: o pagamento já foi aprovado.
	confirmation := fmt.Sprintf("Pagamento do pedido #%s aprovado. Transação %s.", payment.OrderID, result.TransactionID)
	if err := s.messenger.Send(ctx, payment.OrderID, confirmation); err != nil {
		s.logger.Warn("order confirmation not sent", zap.String("order_id", payment.OrderID), zap.Error(err))
	}

	return result, nil
}
