package httpclient

import (
	"context"
	"net/http"
)

type bearerKey struct{}

// WithBearerToken stores the access token used by BearerAuth for requests
// built from ctx.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerTokenFromContext returns the token stored by WithBearerToken.
func BearerTokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(bearerKey{}).(string); ok {
		return t
	}
	return ""
}

// BearerAuth returns a middleware that sets "Authorization: Bearer <token>"
// from the request context. Requests without a token, or with an explicit
// Authorization header, pass through untouched.
func BearerAuth() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			token := BearerTokenFromContext(r.Context())
			if token == "" || r.Header.Get("Authorization") != "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}
