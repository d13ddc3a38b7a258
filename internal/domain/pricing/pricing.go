// Package pricing resolves the unit price and line total of a single order
// line from catalog data.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
)

var (
	// ErrUnpriceable is returned when the selected size matches neither a
	// named size nor the Default sentinel.
	ErrUnpriceable = errors.New("no price available")
	// ErrInvalidQuantity is returned for quantities below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Price is the resolved pricing of one line. Values are unrounded.
type Price struct {
	Unit      decimal.Decimal
	LineTotal decimal.Decimal
}

// Resolve prices qty units of product in the given size. A named size takes
// precedence over the Default sentinel. The product's offer percent, when
// positive, is applied to the unit price before multiplying by qty.
func Resolve(p catalog.Product, size string, qty int) (Price, error) {
	if qty < 1 {
		return Price{}, ErrInvalidQuantity
	}

	base, err := basePrice(p, size)
	if err != nil {
		return Price{}, err
	}

	unit := ApplyOffer(base, p.OfferPercent)
	return Price{
		Unit:      unit,
		LineTotal: unit.Mul(decimal.NewFromInt(int64(qty))),
	}, nil
}

func basePrice(p catalog.Product, size string) (decimal.Decimal, error) {
	if s, ok := p.Size(size); ok {
		return s.Price, nil
	}
	if size == catalog.DefaultSize {
		return p.BasePrice, nil
	}
	return decimal.Zero, ErrUnpriceable
}

// ApplyOffer returns price * (1 - offer/100) when offer is positive, and
// price unchanged otherwise.
func ApplyOffer(price, offer decimal.Decimal) decimal.Decimal {
	if !offer.IsPositive() {
		return price
	}
	return price.Mul(one.Sub(offer.Div(hundred)))
}

// Format renders d with two fixed decimals for display.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
