// Package ctxmeta — метаданные запроса в context.Context: request_id, адрес клиента, trace/span.
// HTTP-слой, MCP-диспетчер и логгер зависят от этого пакета, но не друг от друга.
package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const (
	KeyRequestID ctxKey = "request_id"
	KeyClientIP  ctxKey = "client_ip"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyRequestID)
}

// WithClientIP — адрес клиента для лимитов по IP ниже транспортного слоя.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return withString(ctx, KeyClientIP, ip)
}

func ClientIPFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyClientIP)
}

// TraceIDFromContext — trace_id активного спана, если он есть.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	sc, ok := activeSpan(ctx)
	if !ok {
		return "", false
	}
	return sc.TraceID().String(), true
}

func SpanIDFromContext(ctx context.Context) (string, bool) {
	sc, ok := activeSpan(ctx)
	if !ok {
		return "", false
	}
	return sc.SpanID().String(), true
}

func activeSpan(ctx context.Context) (trace.SpanContext, bool) {
	if ctx == nil {
		return trace.SpanContext{}, false
	}
	sc := trace.SpanContextFromContext(ctx)
	return sc, sc.IsValid()
}

func withString(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
