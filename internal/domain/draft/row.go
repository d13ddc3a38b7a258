// Package draft models an in-progress order: a contact plus an ordered set
// of line-item rows keyed by stable identifiers.
package draft

import (
	"github.com/google/uuid"
)

// RowID identifies a row for the lifetime of a draft.
type RowID string

// NewRowID returns a fresh random row identifier.
func NewRowID() RowID {
	return RowID(uuid.New().String())
}

// Short returns the first eight characters of the id, for display.
func (id RowID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// State is the selection progress of a row.
type State int

const (
	// StateEmpty means no product is selected.
	StateEmpty State = iota
	// StateProductChosen means a product is selected but no size yet.
	StateProductChosen
	// StateSizePriced means both product and size are selected.
	StateSizePriced
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateProductChosen:
		return "product"
	case StateSizePriced:
		return "priced"
	default:
		return "unknown"
	}
}

// Row is one line-item selection. Product ids are positive; zero means no
// product is selected.
type Row struct {
	ID            RowID
	ProductID     int64
	Size          string
	Quantity      int
	Customization string
}

// State derives the row's selection state from its fields.
func (r Row) State() State {
	switch {
	case r.ProductID == 0:
		return StateEmpty
	case r.Size == "":
		return StateProductChosen
	default:
		return StateSizePriced
	}
}

// Complete reports whether the row has both product and size selected.
func (r Row) Complete() bool {
	return r.State() == StateSizePriced
}

func newRow(id RowID) *Row {
	return &Row{ID: id, Quantity: 1}
}
