package httpclient

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LogRequests returns a middleware that logs every call with the logger
// carried by the request context.
func LogRequests() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			lg := zctx.From(r.Context())
			start := time.Now()

			resp, err := next.RoundTrip(r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get(HeaderRequestID)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				lg.Warn("Request failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			lg.Debug("Request completed", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
