package core

import "context"

type contextKey string

const (
	ctxKeyOperator  contextKey = "import_operator"
	ctxKeyIPAddress contextKey = "import_ip"
)

// ContextWithOperator records who is driving an import, for commit logs.
func ContextWithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, ctxKeyOperator, operator)
}

// ContextWithIPAddress records the client address, for commit logs.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// OperatorFromContext returns the operator, or "" if none was set.
func OperatorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyOperator).(string); ok {
		return v
	}
	return ""
}

// IPAddressFromContext returns the client address, or "" if none was set.
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
