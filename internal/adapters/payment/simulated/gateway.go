// Package simulated disponibiliza um gateway de pagamento que aprova tudo localmente.
package simulated

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

const StatusApproved = "approved"

type Gateway struct {
	node *snowflake.Node
	now  func() time.Time
}

var _ ports.PaymentGateway = (*Gateway)(nil)

func New(nodeID int64) (*Gateway, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &Gateway{node: node, now: time.Now}, nil
}

func (g *Gateway) Charge(ctx context.Context, _ domain.Payment) (domain.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentResult{}, err
	}
	return domain.PaymentResult{
		TransactionID: "TX-" + g.node.Generate().String(),
		Status:        StatusApproved,
		Timestamp:     g.now().UTC(),
	}, nil
}
