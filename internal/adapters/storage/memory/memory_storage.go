// Package memory disponibiliza o storage de tentativas em memória do processo.
package memory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

type entry struct {
	record        domain.AttemptRecord
	windowSeconds int64
}

type Storage struct {
	mu      sync.Mutex
	entries map[string]entry
	logger  *zap.Logger
}

var _ ports.AttemptStore = (*Storage)(nil)

func New(logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Storage{
		entries: make(map[string]entry),
		logger:  logger,
	}
}

func (s *Storage) Hit(_ context.Context, key string, now, windowSeconds int64) (domain.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.entries[key].record.Next(now, windowSeconds)
	s.entries[key] = entry{record: record, windowSeconds: windowSeconds}
	return record, nil
}

func (s *Storage) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Sweep remove os registros com janela expirada e devolve quantos foram descartados.
func (s *Storage) Sweep(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.record.Expired(now, e.windowSeconds) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len devolve o número de chaves monitoradas.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Storage) snapshot() map[string]domain.AttemptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.AttemptRecord, len(s.entries))
	for key, e := range s.entries {
		out[key] = e.record
	}
	return out
}

// StartSweeper executa Sweep a cada tick até ctx terminar. onSweep, quando
// informado, recebe o número de chaves monitoradas após cada passada.
func (s *Storage) StartSweeper(ctx context.Context, interval time.Duration, onSweep func(tracked int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed := s.Sweep(now.Unix())
				tracked := s.Len()
				if removed > 0 {
					s.logger.Debug("swept expired attempt records",
						zap.Int("removed", removed),
						zap.Int("tracked", tracked))
				}
				if onSweep != nil {
					onSweep(tracked)
				}
			}
		}
	}()
}
