package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidCSRFToken   = errors.New("invalid csrf token")
	ErrMalformedInput     = errors.New("malformed input")
	ErrInvalidPolicy      = errors.New("invalid rate limit policy")
	ErrEmptyKey           = errors.New("identity key is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
)

func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

func IsCSRFError(err error) bool {
	return errors.Is(err, ErrInvalidCSRFToken)
}

// ValidationError carrega os detalhes por campo de um payload rejeitado.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrMalformedInput.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return ErrMalformedInput.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedInput
}
