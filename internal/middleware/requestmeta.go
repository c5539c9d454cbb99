package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/pastebox/internal/handlers"
)

// RequestMeta captures who is calling into the request context: client
// address, user agent and referrer. Analytics events are stamped with these,
// so this middleware must run before any handler that publishes.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientAddr(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		ctx = huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta))

		next(ctx)
	}
}

// clientAddr resolves the originating client address. Proxy headers win over
// the socket peer: X-Forwarded-For lists the original client first, then
// X-Real-IP. Ports are stripped; bare addresses pass through unchanged, IPv6
// included.
func clientAddr(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	peer := ctx.RemoteAddr()
	if peer == "" {
		peer = ctx.Host()
	}

	if host, _, err := net.SplitHostPort(peer); err == nil {
		return host
	}

	return peer
}
