package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

var orderQuery = regexp.MustCompile(`(?i)pedido\s+#?(\d+)`)

var simulatedStatuses = []string{"Em processamento", "Separado para envio", "Em trânsito", "Entregue"}

// SimulatedOrderStatus sorteia um status, já que não há base de pedidos.
func SimulatedOrderStatus(context.Context, string) (string, error) {
	return simulatedStatuses[rand.IntN(len(simulatedStatuses))], nil
}

// MessagingService responde mensagens recebidas pelo webhook.
type MessagingService struct {
	messenger ports.Messenger
	lookup    ports.OrderStatusLookup
	logger    *zap.Logger
}

func NewMessagingService(messenger ports.Messenger, lookup ports.OrderStatusLookup, log *zap.Logger) (*MessagingService, error) {
	if messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if lookup == nil {
		lookup = SimulatedOrderStatus
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MessagingService{messenger: messenger, lookup: lookup, logger: log}, nil
}

// HandleIncoming responde com o status do pedido quando a mensagem menciona
// "pedido <número>"; caso contrário envia a saudação padrão.
func (s *MessagingService) HandleIncoming(ctx context.Context, msg domain.IncomingMessage) error {
	s.logger.Info("message received",
		zap.String("from", msg.From),
		zap.String("name", SanitizeInput(msg.Name)),
		zap.String("body", SanitizeInput(msg.Body)))

	if match := orderQuery.FindStringSubmatch(msg.Body); match != nil {
		orderNumber := match[1]
		status, err := s.lookup(ctx, orderNumber)
		if err != nil {
			return fmt.Errorf("lookup order %s: %w", orderNumber, err)
		}
		reply := fmt.Sprintf("Seu pedido #%s está: *%s*\n\nPara mais detalhes, acesse sua conta em nosso site.", orderNumber, status)
		return s.messenger.Send(ctx, msg.From, reply)
	}

	reply := fmt.Sprintf("Olá %s, obrigado por entrar em contato com a Torneirinha do Carlão! Como podemos ajudar?", msg.Name)
	return s.messenger.Send(ctx, msg.From, reply)
}
