package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/crm-orderdesk/internal/crmapi"
	"github.com/xenking/crm-orderdesk/internal/desk"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
	"github.com/xenking/crm-orderdesk/pkg/httpclient"
)

// Run creates all dependencies and runs the desk on stdin and stdout until
// the operator quits or ctx is cancelled. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	return run(ctx, lg, m.TracerProvider(), m.MeterProvider(), cfg, os.Stdin, os.Stdout)
}

func run(
	ctx context.Context,
	lg *zap.Logger,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	cfg *Config,
	in io.Reader,
	out io.Writer,
) error {
	lg.Info("Initializing", zap.String("api_url", cfg.APIURL))
	ctx = zctx.Base(ctx, lg)

	// Outgoing transport: request id, bearer token from the call context,
	// logging and OpenTelemetry.
	httpClient := &http.Client{
		Timeout: cfg.HTTP.Timeout,
		Transport: httpclient.Wrap(http.DefaultTransport,
			httpclient.Recovery(),
			httpclient.RequestID(),
			httpclient.BearerAuth(),
			httpclient.LogRequests(),
			httpclient.Instrument(tp, mp),
		),
	}

	api, err := crmapi.New(cfg.APIURL, crmapi.WithHTTPClient(httpClient))
	if err != nil {
		return errors.Wrap(err, "create api client")
	}

	submitter, err := order.NewSubmitter(api, tp, mp)
	if err != nil {
		return errors.Wrap(err, "create submitter")
	}

	ctrl := desk.New(api, submitter, out, desk.Options{
		Token:       cfg.Token,
		LoadTimeout: cfg.LoadTimeout,
	})

	if err := ctrl.Run(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "desk")
	}
	lg.Info("Desk closed")
	return nil
}
