package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDBytes = 16 // OpenTelemetry trace ID size in bytes
	spanIDBytes  = 8  // OpenTelemetry span ID size in bytes
)

const (
	// TraceIDKey holds the OpenTelemetry trace ID.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey holds the OpenTelemetry span ID.
	SpanIDKey contextKey = "span_id"

	// RequestIDKey holds the unique request identifier.
	RequestIDKey contextKey = "request_id"

	// SessionIDKey holds the calculator session a request belongs to.
	SessionIDKey contextKey = "session_id"

	// ModelKey holds the catalog key of the model being priced.
	ModelKey contextKey = "model"
)

// logFieldKeys are copied from the context onto every log entry, in order.
// The log field name is the key itself.
var logFieldKeys = []contextKey{TraceIDKey, SpanIDKey, RequestIDKey, SessionIDKey, ModelKey}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func value(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithTraceID injects trace ID into context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withValue(ctx, TraceIDKey, traceID)
}

// WithSpanID injects span ID into context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return withValue(ctx, SpanIDKey, spanID)
}

// WithRequestID injects request ID into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, RequestIDKey, requestID)
}

// WithSessionID injects session ID into context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withValue(ctx, SessionIDKey, sessionID)
}

// WithModel injects model key into context.
func WithModel(ctx context.Context, model string) context.Context {
	return withValue(ctx, ModelKey, model)
}

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string {
	return value(ctx, TraceIDKey)
}

// GetSpanID extracts span ID from context.
func GetSpanID(ctx context.Context) string {
	return value(ctx, SpanIDKey)
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	return value(ctx, RequestIDKey)
}

// GetSessionID extracts session ID from context.
func GetSessionID(ctx context.Context) string {
	return value(ctx, SessionIDKey)
}

// GetModel extracts model key from context. It returns "" when unset.
func GetModel(ctx context.Context) string {
	return value(ctx, ModelKey)
}

// randomHex returns n random bytes hex-encoded, or fallback when the
// system source fails.
func randomHex(n int, fallback func() string) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fallback()
	}
	return hex.EncodeToString(b)
}

// GenerateTraceID generates an OpenTelemetry-compatible trace ID (32 hex chars).
func GenerateTraceID() string {
	return randomHex(traceIDBytes, func() string {
		return hex.EncodeToString(uuidBytes())
	})
}

// GenerateSpanID generates an OpenTelemetry-compatible span ID (16 hex chars).
func GenerateSpanID() string {
	return randomHex(spanIDBytes, func() string {
		return hex.EncodeToString(uuidBytes()[:spanIDBytes])
	})
}

func uuidBytes() []byte {
	id := uuid.New()
	return id[:]
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateSessionID generates a calculator session identifier (UUID).
func GenerateSessionID() string {
	return uuid.New().String()
}
