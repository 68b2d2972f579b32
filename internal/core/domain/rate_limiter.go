// Package domain concentra entidades e estruturas centrais do rate limiter e do guard.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// AttemptRecord guarda as tentativas de uma chave dentro da janela corrente.
// WindowStart é expresso em segundos Unix.
type AttemptRecord struct {
	Count       int
	WindowStart int64
}

// Next aplica uma nova tentativa ao registro. Um registro vazio ou com janela
// expirada (estritamente maior que windowSeconds) é substituído por {1, now}.
func (a AttemptRecord) Next(now, windowSeconds int64) AttemptRecord {
	if a.Count == 0 || a.Expired(now, windowSeconds) {
		return AttemptRecord{Count: 1, WindowStart: now}
	}
	return AttemptRecord{Count: a.Count + 1, WindowStart: a.WindowStart}
}

// Expired indica se now já está fora da janela do registro.
func (a AttemptRecord) Expired(now, windowSeconds int64) bool {
	return now-a.WindowStart > windowSeconds
}

type RateLimitPolicy struct {
	Name        string
	MaxAttempts int
	Window      time.Duration
}

func (p RateLimitPolicy) WindowSeconds() int64 {
	return int64(p.Window / time.Second)
}

func (p RateLimitPolicy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	// ':' separa política e chave no namespace do storage.
	if strings.Contains(p.Name, ":") {
		return fmt.Errorf("%w: %s name must not contain ':'", ErrInvalidPolicy, p.Name)
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("%w: %s max attempts must be positive", ErrInvalidPolicy, p.Name)
	}
	if p.WindowSeconds() <= 0 {
		return fmt.Errorf("%w: %s window must be at least one second", ErrInvalidPolicy, p.Name)
	}
	return nil
}

// Decision descreve o resultado de uma verificação de rate limit.
type Decision struct {
	Limited bool
	Key     string
	Policy  RateLimitPolicy
	Record  AttemptRecord
}
