package draft

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/pricing"
)

// Summary is the derived pricing of a draft.
type Summary struct {
	// Total is the unrounded sum of all priced lines.
	Total decimal.Decimal
	// Lines holds the price of every row that could be priced.
	Lines map[RowID]pricing.Price
}

// Line returns the price of a row, if it could be priced.
func (s Summary) Line(id RowID) (pricing.Price, bool) {
	p, ok := s.Lines[id]
	return p, ok
}

// Recompute prices every row against snap and sums the line totals. Rows
// that are incomplete, reference a product missing from the snapshot, or
// cannot be priced contribute zero. It has no side effects.
func Recompute(snap *catalog.Snapshot, rows []Row) Summary {
	s := Summary{
		Total: decimal.Zero,
		Lines: make(map[RowID]pricing.Price, len(rows)),
	}
	for _, r := range rows {
		if !r.Complete() {
			continue
		}
		p, ok := snap.Lookup(r.ProductID)
		if !ok {
			continue
		}
		price, err := pricing.Resolve(p, r.Size, r.Quantity)
		if err != nil {
			continue
		}
		s.Lines[r.ID] = price
		s.Total = s.Total.Add(price.LineTotal)
	}
	return s
}
