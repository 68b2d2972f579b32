// Package logger configura o zap.Logger compartilhado pela aplicação.
package logger

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New(env, level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if env == "dev" {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	return config.Build()
}

var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"x-csrf-token":  true,
}

// MaskHeaders returns header values with credentials reduced to their last 4 characters.
func MaskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		if sensitiveHeaders[strings.ToLower(key)] {
			joined = MaskValue(joined)
		}
		masked[key] = joined
	}
	return masked
}

func MaskValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
