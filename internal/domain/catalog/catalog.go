// Package catalog holds the read-only product snapshot used while composing
// an order.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DefaultSize is the synthetic size option that prices a line at the
// product's base price.
const DefaultSize = "Default"

var hundred = decimal.NewFromInt(100)

// Size is a named size variant with its own price.
type Size struct {
	Name  string
	Price decimal.Decimal
}

// Product is a catalog item with optional per-size pricing.
type Product struct {
	ID           int64
	Name         string
	SKU          string
	BasePrice    decimal.Decimal
	OfferPercent decimal.Decimal
	Sizes        []Size
}

// SizeOption is one entry of a product's size choice list.
type SizeOption struct {
	Name  string
	Price decimal.Decimal
	// Synthetic is set for the Default option carrying the base price.
	Synthetic bool
}

// Size returns the named size declared by the product.
func (p Product) Size(name string) (Size, bool) {
	for _, s := range p.Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return Size{}, false
}

// SizeOptions returns the product's sizes in declaration order followed by
// the synthetic Default option. A product that declares its own "Default"
// size gets no synthetic entry.
func (p Product) SizeOptions() []SizeOption {
	out := make([]SizeOption, 0, len(p.Sizes)+1)
	for _, s := range p.Sizes {
		out = append(out, SizeOption{Name: s.Name, Price: s.Price})
	}
	if _, ok := p.Size(DefaultSize); !ok {
		out = append(out, SizeOption{Name: DefaultSize, Price: p.BasePrice, Synthetic: true})
	}
	return out
}

// InvalidProductError reports a product that violates catalog invariants.
type InvalidProductError struct {
	ProductID int64
	Reason    string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("invalid product %d: %s", e.ProductID, e.Reason)
}

func validate(p Product) error {
	invalid := func(reason string) error {
		return &InvalidProductError{ProductID: p.ID, Reason: reason}
	}
	if p.BasePrice.IsNegative() {
		return invalid("negative base price")
	}
	if p.OfferPercent.IsNegative() || p.OfferPercent.GreaterThan(hundred) {
		return invalid("offer percent out of range")
	}
	seen := make(map[string]struct{}, len(p.Sizes))
	for _, s := range p.Sizes {
		if s.Price.IsNegative() {
			return invalid(fmt.Sprintf("negative price for size %q", s.Name))
		}
		if _, dup := seen[s.Name]; dup {
			return invalid(fmt.Sprintf("duplicate size %q", s.Name))
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// Snapshot is an immutable, validated copy of the product catalog.
type Snapshot struct {
	products []Product
	byID     map[int64]int
}

// NewSnapshot validates products and freezes them into a Snapshot. The input
// order is kept for display.
func NewSnapshot(products []Product) (*Snapshot, error) {
	s := &Snapshot{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	for _, p := range products {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, &InvalidProductError{ProductID: p.ID, Reason: "duplicate id"}
		}
		p.Sizes = append([]Size(nil), p.Sizes...)
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s, nil
}

// Lookup returns the product with the given id.
func (s *Snapshot) Lookup(id int64) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Products returns the catalog in load order.
func (s *Snapshot) Products() []Product {
	if s == nil {
		return nil
	}
	return append([]Product(nil), s.products...)
}

// Len returns the number of products.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.products)
}

// Loader reads the product catalog from the remote API.
type Loader interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// Load fetches the catalog and freezes it.
func Load(ctx context.Context, l Loader) (*Snapshot, error) {
	products, err := l.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return NewSnapshot(products)
}
