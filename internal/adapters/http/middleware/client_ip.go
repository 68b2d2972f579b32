package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey int

const clientIPKey ctxKey = iota

const fallbackIP = "127.0.0.1"

// ClientIP resolve o IP do cliente. Cabeçalhos de proxy só são considerados
// quando trustProxy é verdadeiro.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
		if xForwardedFor != "" {
			first, _, _ := strings.Cut(xForwardedFor, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}

		xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
		if xRealIP != "" {
			return xRealIP
		}
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return fallbackIP
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}

func withClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext devolve o IP resolvido pelo guard para a requisição.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey).(string)
	return ip, ok && ip != ""
}
