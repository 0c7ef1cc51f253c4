package goCognito

import "context"

type correlationIDContextKey struct{}

// WithCorrelationID attaches a request correlation id to ctx. Audit events emitted
// while handling ctx carry it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, id)
}

func correlationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(correlationIDContextKey{}).(string)
	return id
}
