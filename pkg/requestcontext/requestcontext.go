// Package requestcontext carries per-request values (request id, client
// metadata, request time) through context.Context.
package requestcontext

import (
	"context"
	"time"
)

type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyClientIP  contextKey = "client_ip"
	keyUserAgent contextKey = "user_agent"
	keyTime      contextKey = "request_time"
)

// UnknownClient is the client key used when no address can be derived.
const UnknownClient = "unknown"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(keyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata stores the derived client address and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, clientIP)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

// ClientIP returns the derived client address, or UnknownClient.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(keyClientIP).(string); ok && v != "" {
		return v
	}
	return UnknownClient
}

func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(keyUserAgent).(string); ok {
		return v
	}
	return ""
}

// WithTime pins the request time so every layer sees the same instant.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyTime, t)
}

// Now returns the pinned request time, or time.Now() when none was set.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(keyTime).(time.Time); ok && !v.IsZero() {
		return v
	}
	return time.Now()
}
