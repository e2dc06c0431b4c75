package logger

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is the logging state of one request. Middleware extends it as the
// request passes through, so entries written deep in a service still carry
// who asked and under which request id.
type scope struct {
	requestID string
	fields    []zap.Field
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	s := scopeFrom(ctx)
	s.requestID = requestID
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithFields adds fields to every entry logged through FromCtx on the
// returned context. The parent context is not affected.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	s := scopeFrom(ctx)
	s.fields = append(slices.Clip(s.fields), fields...)
	return context.WithValue(ctx, scopeKey{}, s)
}

func RequestIDFrom(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// FromCtx returns the process logger tagged with the request scope of ctx.
func FromCtx(ctx context.Context) *zap.Logger {
	s := scopeFrom(ctx)
	l := L()
	if s.requestID != "" {
		l = l.With(zap.String("request_id", s.requestID))
	}
	if len(s.fields) > 0 {
		l = l.With(s.fields...)
	}
	return l
}
