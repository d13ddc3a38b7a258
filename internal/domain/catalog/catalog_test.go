package catalog

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shirt() Product {
	return Product{
		ID:           1,
		Name:         "Shirt",
		SKU:          "SH-1",
		BasePrice:    decimal.NewFromInt(100),
		OfferPercent: decimal.NewFromInt(10),
		Sizes: []Size{
			{Name: "M", Price: decimal.NewFromInt(110)},
			{Name: "L", Price: decimal.NewFromInt(120)},
		},
	}
}

func TestSizeOptions_AppendsDefault(t *testing.T) {
	opts := shirt().SizeOptions()
	require.Len(t, opts, 3)

	assert.Equal(t, "M", opts[0].Name)
	assert.Equal(t, "L", opts[1].Name)
	assert.Equal(t, DefaultSize, opts[2].Name)
	assert.True(t, opts[2].Synthetic)
	assert.True(t, decimal.NewFromInt(100).Equal(opts[2].Price))
}

func TestSizeOptions_DeclaredDefaultWins(t *testing.T) {
	p := shirt()
	p.Sizes = append(p.Sizes, Size{Name: DefaultSize, Price: decimal.NewFromInt(95)})

	opts := p.SizeOptions()
	require.Len(t, opts, 3)
	assert.False(t, opts[2].Synthetic)
	assert.True(t, decimal.NewFromInt(95).Equal(opts[2].Price))
}

func TestNewSnapshot_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Product)
	}{
		{"negative base price", func(p *Product) { p.BasePrice = decimal.NewFromInt(-1) }},
		{"offer above 100", func(p *Product) { p.OfferPercent = decimal.NewFromInt(101) }},
		{"negative offer", func(p *Product) { p.OfferPercent = decimal.NewFromInt(-5) }},
		{"negative size price", func(p *Product) { p.Sizes[0].Price = decimal.NewFromInt(-3) }},
		{"duplicate size", func(p *Product) { p.Sizes[1].Name = p.Sizes[0].Name }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := shirt()
			tt.mutate(&p)

			_, err := NewSnapshot([]Product{p})

			var ipErr *InvalidProductError
			require.ErrorAs(t, err, &ipErr)
			assert.Equal(t, int64(1), ipErr.ProductID)
		})
	}
}

func TestNewSnapshot_DuplicateID(t *testing.T) {
	_, err := NewSnapshot([]Product{shirt(), shirt()})

	var ipErr *InvalidProductError
	require.ErrorAs(t, err, &ipErr)
	assert.Contains(t, ipErr.Error(), "duplicate id")
}

func TestSnapshot_Lookup(t *testing.T) {
	hat := shirt()
	hat.ID = 2
	hat.Name = "Hat"
	hat.Sizes = nil

	s, err := NewSnapshot([]Product{shirt(), hat})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	got, ok := s.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "Hat", got.Name)

	_, ok = s.Lookup(99)
	assert.False(t, ok)

	names := []string{}
	for _, p := range s.Products() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Shirt", "Hat"}, names)
}

func TestSnapshot_IsolatedFromInput(t *testing.T) {
	in := []Product{shirt()}
	s, err := NewSnapshot(in)
	require.NoError(t, err)

	in[0].Sizes[0].Price = decimal.NewFromInt(1)

	got, _ := s.Lookup(1)
	assert.True(t, decimal.NewFromInt(110).Equal(got.Sizes[0].Price))
}

func TestSnapshot_NilIsEmpty(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Products())
	_, ok := s.Lookup(1)
	assert.False(t, ok)
}

type mockLoader struct {
	products []Product
	err      error
}

func (m *mockLoader) ListProducts(_ context.Context) ([]Product, error) {
	return m.products, m.err
}

func TestLoad(t *testing.T) {
	s, err := Load(context.Background(), &mockLoader{products: []Product{shirt()}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = Load(context.Background(), &mockLoader{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}
