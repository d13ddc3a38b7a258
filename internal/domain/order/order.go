package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for submission pre-flight checks.
var (
	ErrContactRequired = errors.New("contact required")
	ErrNoItems         = errors.New("no complete items to submit")
	// ErrRejected matches every *RejectedError.
	ErrRejected = errors.New("order rejected")
)

// RejectedError indicates the server refused the order for a reason other
// than authentication. The draft is kept so the user can retry.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order rejected with status %d", e.Status)
	}
	return fmt.Sprintf("order rejected with status %d: %s", e.Status, e.Message)
}

// Is reports whether target is ErrRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Item is one normalized line of an order request.
type Item struct {
	ProductID     int64
	SizeName      string
	Qty           int
	Customization string
}

// Request is the order creation payload.
type Request struct {
	ContactID int64
	Items     []Item
}

// SubmittedOrder is the authoritative order returned by the server. Its
// figures may differ from the client estimate and are displayed as is.
type SubmittedOrder struct {
	ID          int64
	OrderNo     string
	ContactName string
	Items       []SubmittedItem
	Total       decimal.Decimal
}

// SubmittedItem is one priced line of a SubmittedOrder.
type SubmittedItem struct {
	ProductName string
	SizeName    string
	UnitPrice   decimal.Decimal
	Qty         int
	LineTotal   decimal.Decimal
}

// Gateway creates orders on the remote system.
type Gateway interface {
	CreateOrder(ctx context.Context, req Request) (*SubmittedOrder, error)
}

// ErrNotFound is returned when a stored order does not exist.
var ErrNotFound = errors.New("order not found")

// Finder reads stored orders.
type Finder interface {
	GetOrder(ctx context.Context, id int64) (*SubmittedOrder, error)
}
