package kit

import "context"

type contextKey string

const (
	TransportKey contextKey = "kit_transport" // "http", "mcp", "mcp_quic"
	RequestIDKey contextKey = "kit_request_id"
)

// Transport names.
const (
	TransportHTTP    = "http"
	TransportMCP     = "mcp"
	TransportMCPQUIC = "mcp_quic"
)

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}

// WithDefaultTransport sets t unless a transport is already recorded.
func WithDefaultTransport(ctx context.Context, t string) context.Context {
	if _, ok := ctx.Value(TransportKey).(string); ok {
		return ctx
	}
	return WithTransport(ctx, t)
}

func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return TransportHTTP
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}
