package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// recorder captures the request that reached the end of the chain.
type recorder struct {
	got    *http.Request
	status int
	err    error
}

func (rec *recorder) RoundTrip(r *http.Request) (*http.Response, error) {
	rec.got = r
	if rec.err != nil {
		return nil, rec.err
	}
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{StatusCode: status, Body: http.NoBody, Request: r}, nil
}

func newRequest(t *testing.T, ctx context.Context) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://crm.test/api/products/", nil)
	require.NoError(t, err)
	return req
}

func TestWrap_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				calls = append(calls, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Wrap(&recorder{}, mark("outer"), mark("inner"))
	_, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.NoError(t, err)

	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestRequestID_Generated(t *testing.T) {
	rec := &recorder{}
	req := newRequest(t, context.Background())

	_, err := Wrap(rec, RequestID()).RoundTrip(req)
	require.NoError(t, err)

	id := rec.got.Header.Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Empty(t, req.Header.Get(HeaderRequestID), "original request must not be mutated")
}

func TestRequestID_FromContext(t *testing.T) {
	rec := &recorder{}
	ctx := WithRequestID(context.Background(), "cmd-42")

	_, err := Wrap(rec, RequestID()).RoundTrip(newRequest(t, ctx))
	require.NoError(t, err)

	assert.Equal(t, "cmd-42", rec.got.Header.Get(HeaderRequestID))
	assert.Equal(t, "cmd-42", RequestIDFromContext(ctx))
}

func TestRequestID_ExistingHeaderKept(t *testing.T) {
	rec := &recorder{}
	req := newRequest(t, context.Background())
	req.Header.Set(HeaderRequestID, "preset")

	_, err := Wrap(rec, RequestID()).RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "preset", rec.got.Header.Get(HeaderRequestID))
}

func TestIsValidRequestID(t *testing.T) {
	assert.True(t, isValidRequestID("abc-123"))
	assert.False(t, isValidRequestID(""))
	assert.False(t, isValidRequestID(strings.Repeat("a", 129)))
	assert.False(t, isValidRequestID("bad\nid"))
}

func TestBearerAuth(t *testing.T) {
	t.Run("token from context", func(t *testing.T) {
		rec := &recorder{}
		ctx := WithBearerToken(context.Background(), "tok")

		_, err := Wrap(rec, BearerAuth()).RoundTrip(newRequest(t, ctx))
		require.NoError(t, err)

		assert.Equal(t, "Bearer tok", rec.got.Header.Get("Authorization"))
	})

	t.Run("no token", func(t *testing.T) {
		rec := &recorder{}

		_, err := Wrap(rec, BearerAuth()).RoundTrip(newRequest(t, context.Background()))
		require.NoError(t, err)

		assert.Empty(t, rec.got.Header.Get("Authorization"))
	})

	t.Run("explicit header wins", func(t *testing.T) {
		rec := &recorder{}
		req := newRequest(t, WithBearerToken(context.Background(), "tok"))
		req.Header.Set("Authorization", "Basic xyz")

		_, err := Wrap(rec, BearerAuth()).RoundTrip(req)
		require.NoError(t, err)

		assert.Equal(t, "Basic xyz", rec.got.Header.Get("Authorization"))
	})
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	_, err := Wrap(&recorder{status: http.StatusCreated}, LogRequests()).RoundTrip(newRequest(t, ctx))
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request completed", entry.Message)
	assert.Equal(t, int64(http.StatusCreated), entry.ContextMap()["status"])
	assert.Equal(t, "/api/products/", entry.ContextMap()["path"])
}

func TestLogRequests_Failure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	_, err := Wrap(&recorder{err: errors.New("dial tcp: refused")}, LogRequests()).RoundTrip(newRequest(t, ctx))
	require.Error(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zap.WarnLevel, logs.All()[0].Level)
}

func TestInstrument_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Wrap(http.DefaultTransport,
		RequestID(),
		BearerAuth(),
		Instrument(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider()),
	)}

	req, err := http.NewRequestWithContext(WithBearerToken(context.Background(), "tok"), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))

	boom := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		panic("boom")
	})
	resp, err := Wrap(boom, Recovery()).RoundTrip(newRequest(t, ctx))
	require.ErrorIs(t, err, ErrPanic)
	assert.Nil(t, resp)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
	assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
}
