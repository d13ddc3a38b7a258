package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
)

func productA(offer int64) catalog.Product {
	return catalog.Product{
		ID:           1,
		Name:         "A",
		BasePrice:    decimal.NewFromInt(100),
		OfferPercent: decimal.NewFromInt(offer),
		Sizes: []catalog.Size{
			{Name: "L", Price: decimal.NewFromInt(120)},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		product   catalog.Product
		size      string
		qty       int
		wantUnit  string
		wantTotal string
		wantErr   error
	}{
		{
			name:      "named size with offer",
			product:   productA(10),
			size:      "L",
			qty:       2,
			wantUnit:  "108",
			wantTotal: "216",
		},
		{
			name:      "default size with offer",
			product:   productA(10),
			size:      catalog.DefaultSize,
			qty:       1,
			wantUnit:  "90",
			wantTotal: "90",
		},
		{
			name:      "no offer keeps size price exactly",
			product:   productA(0),
			size:      "L",
			qty:       3,
			wantUnit:  "120",
			wantTotal: "360",
		},
		{
			name:      "no offer keeps base price exactly",
			product:   productA(0),
			size:      catalog.DefaultSize,
			qty:       1,
			wantUnit:  "100",
			wantTotal: "100",
		},
		{
			name:      "full offer is free",
			product:   productA(100),
			size:      "L",
			qty:       1,
			wantUnit:  "0",
			wantTotal: "0",
		},
		{
			name:    "unknown size is unpriceable",
			product: productA(10),
			size:    "XXL",
			qty:     1,
			wantErr: ErrUnpriceable,
		},
		{
			name:    "unset size is unpriceable",
			product: productA(10),
			size:    "",
			qty:     1,
			wantErr: ErrUnpriceable,
		},
		{
			name:    "zero quantity rejected",
			product: productA(10),
			size:    "L",
			qty:     0,
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.product, tt.size, tt.qty)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantUnit).Equal(got.Unit),
				"expected unit %s, got %s", tt.wantUnit, got.Unit)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(got.LineTotal),
				"expected total %s, got %s", tt.wantTotal, got.LineTotal)
		})
	}
}

func TestResolve_NamedDefaultSizeWins(t *testing.T) {
	p := productA(0)
	p.Sizes = append(p.Sizes, catalog.Size{Name: catalog.DefaultSize, Price: decimal.NewFromInt(80)})

	got, err := Resolve(p, catalog.DefaultSize, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(got.Unit))
}

func TestResolve_Deterministic(t *testing.T) {
	p := productA(15)
	first, err := Resolve(p, "L", 7)
	require.NoError(t, err)

	for range 10 {
		again, err := Resolve(p, "L", 7)
		require.NoError(t, err)
		assert.Equal(t, first.LineTotal.String(), again.LineTotal.String())
	}
}

func TestResolve_FractionalOfferKeepsPrecision(t *testing.T) {
	p := catalog.Product{
		BasePrice:    decimal.RequireFromString("9.99"),
		OfferPercent: decimal.RequireFromString("12.5"),
	}

	got, err := Resolve(p, catalog.DefaultSize, 3)
	require.NoError(t, err)

	// 9.99 * 0.875 = 8.74125, unrounded.
	assert.Equal(t, "8.74125", got.Unit.String())
	assert.Equal(t, "26.22375", got.LineTotal.String())
	assert.Equal(t, "26.22", Format(got.LineTotal))
}

func TestApplyOffer_NonPositiveOffer(t *testing.T) {
	price := decimal.RequireFromString("42.50")
	assert.True(t, price.Equal(ApplyOffer(price, decimal.Zero)))
	assert.True(t, price.Equal(ApplyOffer(price, decimal.NewFromInt(-1))))
}
