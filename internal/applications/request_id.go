package applications

import "context"

type requestIDKey struct{}

// WithRequestID stores the request id so background work can log it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type baseURLKey struct{}

// WithBaseURL stores a request-derived origin used when Service.BaseURL is empty.
func WithBaseURL(ctx context.Context, base string) context.Context {
	if base == "" {
		return ctx
	}
	return context.WithValue(ctx, baseURLKey{}, base)
}

// BaseURLFromContext returns the origin stored by WithBaseURL.
func BaseURLFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	base, _ := ctx.Value(baseURLKey{}).(string)
	return base
}
