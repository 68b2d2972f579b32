package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/JeanGrijp/storefront-guard/internal/logger"
)

// RequestLogger registra uma linha por requisição com status, bytes e duração.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if rid := chimiddleware.GetReqID(r.Context()); rid != "" {
				fields = append(fields, zap.String("request_id", rid))
			}
			fields = append(fields, zap.String("remote_addr", r.RemoteAddr))
			if log.Core().Enabled(zap.DebugLevel) {
				fields = append(fields, zap.Any("headers", logger.MaskHeaders(r.Header)))
			}
			log.Info("http request", fields...)
		})
	}
}
