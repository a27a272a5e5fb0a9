// Package tracer provides a small tracing abstraction so the contact pipeline
// can emit spans without importing OpenTelemetry throughout the codebase.
//
// Implementations:
//   - NoopTracer: for tests and when tracing is disabled
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span. The returned context carries the span and
	// should be passed to child operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanContactDispatch,
	//       tracer.String(tracer.AttrProvider, "resend"),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a short SHA-256 digest of a normalized address so traces
// can correlate submissions from the same sender without carrying the address.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanContactSubmit   = "contact.submit"
	SpanContactDispatch = "contact.dispatch"
)

// Attribute keys.
const (
	AttrProvider       = "email.provider"
	AttrRecipientCount = "email.recipient_count"
	AttrSenderHash     = "email.sender_hash"
	AttrMessageID      = "email.message_id"
	AttrBreakerState   = "circuit.state"
	AttrOutcome        = "contact.outcome"
)

// Event names.
const (
	EventBreakerRejected = "circuit.rejected"
)
