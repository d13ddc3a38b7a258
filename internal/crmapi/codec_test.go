package crmapi

import (
	"testing"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProduct(t *testing.T) {
	p, err := decodeProduct(jx.DecodeStr(`{
		"id": 3, "name": "Hoodie", "sku": "HD-1", "base_price": "50.00", "offer_percent": 20,
		"sizes": [{"size_name": "L", "price": "60.00"}, {"size_name": "XL", "price": 65}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "Hoodie", p.Name)
	assert.Equal(t, "HD-1", p.SKU)
	assert.True(t, decimal.NewFromInt(50).Equal(p.BasePrice))
	assert.True(t, decimal.NewFromInt(20).Equal(p.OfferPercent))
	require.Len(t, p.Sizes, 2)
	assert.Equal(t, "XL", p.Sizes[1].Name)
	assert.True(t, decimal.NewFromInt(65).Equal(p.Sizes[1].Price))
}

func TestDecodeProduct_FieldError(t *testing.T) {
	_, err := decodeProduct(jx.DecodeStr(`{"id": 3, "base_price": "abc"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"base_price"`)
}

func TestDecodeSession(t *testing.T) {
	s, err := decodeSession(jx.DecodeStr(`{
		"refresh": "r", "access": "a",
		"user": {"id": 1, "username": "desk", "email": null, "role": "admin"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "a", s.Credentials.Access)
	assert.Equal(t, "r", s.Credentials.Refresh)
	assert.Equal(t, "admin", s.User.Role)
	assert.Empty(t, s.User.Email)
}

func TestDecodeSubmittedOrder(t *testing.T) {
	o, err := decodeSubmittedOrder(jx.DecodeStr(`{
		"id": 9, "order_no": "ORD-9", "contact_name": "Ada",
		"items": [{"product_name": "Mug", "size_name": "Default", "unit_price": "5.00", "qty": 3, "line_total": "15.00"}],
		"order_total": "14.00"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", o.OrderNo)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Qty)
	// The server total is kept as sent even when it disagrees with the lines.
	assert.True(t, decimal.NewFromInt(14).Equal(o.Total))
}

func TestDecodeList(t *testing.T) {
	for _, tt := range []struct {
		name     string
		input    string
		wantIDs  []int64
		wantNext string
	}{
		{"Array", `[{"id":1},{"id":2}]`, []int64{1, 2}, ""},
		{"Envelope", `{"count":1,"next":null,"results":[{"id":3}]}`, []int64{3}, ""},
		{"EnvelopeWithNext", `{"next":"products/?page=2","results":[{"id":4}]}`, []int64{4}, "products/?page=2"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var ids []int64
			next, err := decodeList(jx.DecodeStr(tt.input), func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				ids = append(ids, p.ID)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantNext, next)
		})
	}
}

func TestDecodeList_NotAList(t *testing.T) {
	_, err := decodeList(jx.DecodeStr(`"nope"`), func(d *jx.Decoder) error { return d.Skip() })
	require.Error(t, err)
}
