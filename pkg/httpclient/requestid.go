package httpclient

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID is the correlation header sent with every request.
const HeaderRequestID = "X-Request-ID"

// requestIDKey is the context key for the request ID value.
type requestIDKey struct{}

// WithRequestID stores a request ID in the context. Requests built from it
// carry that ID instead of a generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request ID from the context.
// It returns an empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestID returns a middleware that ensures every outgoing request has a
// unique identifier. An X-Request-ID header already on the request wins,
// then a valid ID from the context, otherwise a new UUID v4 is generated.
// Values must be at most 128 bytes of printable ASCII (0x20-0x7E).
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if isValidRequestID(r.Header.Get(HeaderRequestID)) {
				return next.RoundTrip(r)
			}
			id := RequestIDFromContext(r.Context())
			if !isValidRequestID(id) {
				id = uuid.New().String()
			}
			r = r.Clone(r.Context())
			r.Header.Set(HeaderRequestID, id)
			return next.RoundTrip(r)
		})
	}
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}
