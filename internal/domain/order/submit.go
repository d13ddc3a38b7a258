package order

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/draft"
)

const instrumentationName = "github.com/xenking/crm-orderdesk/internal/domain/order"

// Submitter converts draft rows into an order request and sends it through
// the Gateway.
type Submitter struct {
	gateway   Gateway
	tracer    trace.Tracer
	submitted metric.Int64Counter
}

// NewSubmitter creates a Submitter reporting spans and a per-outcome
// submission counter to the given providers.
func NewSubmitter(gateway Gateway, tp trace.TracerProvider, mp metric.MeterProvider) (*Submitter, error) {
	submitted, err := mp.Meter(instrumentationName).Int64Counter("desk.orders.submitted",
		metric.WithDescription("Order submissions by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create submitted counter")
	}
	return &Submitter{
		gateway:   gateway,
		tracer:    tp.Tracer(instrumentationName),
		submitted: submitted,
	}, nil
}

// Submit sends the complete rows of a draft for contactID. Incomplete rows
// are dropped from the payload; identical lines are merged. The returned
// order is the server's, unmodified.
func (s *Submitter) Submit(ctx context.Context, contactID int64, rows []draft.Row) (_ *SubmittedOrder, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Submit")
	defer func() {
		s.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(rerr))))
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if contactID == 0 {
		return nil, ErrContactRequired
	}

	items := Items(rows)
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	span.SetAttributes(
		attribute.Int64("order.contact_id", contactID),
		attribute.Int("order.items", len(items)),
	)

	o, err := s.gateway.CreateOrder(ctx, Request{ContactID: contactID, Items: items})
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

type mergeKey struct {
	productID     int64
	size          string
	customization string
}

// Items keeps the complete rows and merges lines with the same product,
// size and customization by summing their quantities. The first occurrence
// of each line fixes its position.
func Items(rows []draft.Row) []Item {
	items := make([]Item, 0, len(rows))
	index := make(map[mergeKey]int, len(rows))
	for _, r := range rows {
		if !r.Complete() {
			continue
		}
		k := mergeKey{productID: r.ProductID, size: r.Size, customization: r.Customization}
		if i, ok := index[k]; ok {
			items[i].Qty += max(r.Quantity, 1)
			continue
		}
		index[k] = len(items)
		items = append(items, Item{
			ProductID:     r.ProductID,
			SizeName:      r.Size,
			Qty:           max(r.Quantity, 1),
			Customization: r.Customization,
		})
	}
	return items
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, auth.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrContactRequired), errors.Is(err, ErrNoItems):
		return "incomplete"
	default:
		return "error"
	}
}
