package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAttemptRecordNext(t *testing.T) {
	const window = 60

	first := AttemptRecord{}.Next(1000, window)
	if first != (AttemptRecord{Count: 1, WindowStart: 1000}) {
		t.Fatalf("unexpected first record %+v", first)
	}

	second := first.Next(1030, window)
	if second != (AttemptRecord{Count: 2, WindowStart: 1000}) {
		t.Fatalf("unexpected second record %+v", second)
	}

	boundary := second.Next(1060, window)
	if boundary != (AttemptRecord{Count: 3, WindowStart: 1000}) {
		t.Fatalf("expected boundary attempt to stay in window, got %+v", boundary)
	}

	expired := boundary.Next(1061, window)
	if expired != (AttemptRecord{Count: 1, WindowStart: 1061}) {
		t.Fatalf("expected expired window to restart, got %+v", expired)
	}
}

func TestRateLimitPolicyWindowSeconds(t *testing.T) {
	p := RateLimitPolicy{Name: "login", MaxAttempts: 5, Window: 15 * time.Minute}
	if got := p.WindowSeconds(); got != 900 {
		t.Fatalf("expected 900 seconds, got %d", got)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestRateLimitPolicyRejectsSeparatorInName(t *testing.T) {
	p := RateLimitPolicy{Name: "login:admin", MaxAttempts: 5, Window: time.Minute}
	if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestValidationErrorMatchesMalformedInput(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"orderId": "required", "amount": "gt"}}
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ValidationError to match ErrMalformedInput")
	}
	if got := err.Error(); got != "malformed input: amount, orderId" {
		t.Fatalf("unexpected message %q", got)
	}
}
