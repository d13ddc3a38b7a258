package httpclient

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ErrPanic is returned by Recovery when a downstream RoundTripper panicked.
var ErrPanic = errors.New("round trip panicked")

// Recovery returns a middleware that recovers from panics in the rest of
// the chain, logs them with a stack trace and fails the request instead.
func Recovery() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (resp *http.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					lg := zctx.From(r.Context())
					lg.Error("panic recovered",
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
					resp, err = nil, errors.Wrapf(ErrPanic, "%s %s", r.Method, r.URL.Path)
				}
			}()
			return next.RoundTrip(r)
		})
	}
}
