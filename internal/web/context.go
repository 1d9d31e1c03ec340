package web

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/JonMunkholm/rosterimport/internal/core"
)

// operatorHeader names the person driving an import, for commit logs.
const operatorHeader = "X-Operator"

// WithRequestMetadata adds the client IP and operator to ctx for commit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	if op := strings.TrimSpace(r.Header.Get(operatorHeader)); op != "" {
		ctx = core.ContextWithOperator(ctx, op)
	}
	return ctx
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already resolved for proxied requests.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
