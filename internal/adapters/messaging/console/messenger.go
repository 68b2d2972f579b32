// Package console disponibiliza um Messenger que apenas registra as mensagens no log.
package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

type Messenger struct {
	logger *zap.Logger
}

var _ ports.Messenger = (*Messenger)(nil)

func New(logger *zap.Logger) *Messenger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Messenger{logger: logger}
}

func (m *Messenger) Send(_ context.Context, to, body string) error {
	m.logger.Info("outbound message", zap.String("to", to), zap.String("body", body))
	return nil
}
