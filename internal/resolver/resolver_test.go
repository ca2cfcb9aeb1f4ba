package resolver

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

func rec(kv ...string) types.Record {
	r := make(types.Record)
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i]] = types.StringValue(kv[i+1])
	}
	return r
}

func multi(key string, recs ...types.Record) *types.Collection {
	c := types.NewCollection(types.CollectMulti)
	for _, r := range recs {
		c.Add(key, r)
	}
	return c
}

func TestResolvePriceByType(t *testing.T) {
	prices := multi("X1",
		rec("itemNumber", "X1", "type", "listPrice", "amount", "10.00", "currency", "PLN"),
		rec("itemNumber", "X1", "type", "discountPrice", "amount", "8.00"),
	)
	r := New(Sources{Prices: prices}, Fields{})

	price, ok := r.ResolvePrice("X1")
	require.True(t, ok)
	assert.Equal(t, "10.00", price.Regular.Decimal.StringFixed(2))
	assert.Equal(t, "8.00", price.Sale.Decimal.StringFixed(2))
	assert.Equal(t, "PLN", price.Currency)

	// order of entries does not matter
	prices = multi("X1",
		rec("itemNumber", "X1", "type", "discountPrice", "amount", "8.00"),
		rec("itemNumber", "X1", "type", "listPrice", "amount", "10.00"),
	)
	price, ok = New(Sources{Prices: prices}, Fields{}).ResolvePrice("X1")
	require.True(t, ok)
	assert.True(t, price.Regular.Decimal.Equal(decimal.RequireFromString("10")))
	assert.True(t, price.Sale.Decimal.Equal(decimal.RequireFromString("8")))
}

func TestResolvePriceUntypedAndMissing(t *testing.T) {
	prices := multi("A1", rec("sku", "A1", "price", "1 299,50 zł", "discount_price", "999,00"))
	r := New(Sources{Prices: prices}, Fields{})

	price, ok := r.ResolvePrice("A1")
	require.True(t, ok)
	assert.Equal(t, "1299.5", price.Regular.Decimal.String())
	assert.Equal(t, "999", price.Sale.Decimal.String())

	_, ok = r.ResolvePrice("NOPE")
	assert.False(t, ok)

	_, ok = New(Sources{}, Fields{}).ResolvePrice("A1")
	assert.False(t, ok)
}

func TestResolvePriceMalformedEntry(t *testing.T) {
	prices := multi("B1",
		rec("itemNumber", "B1", "type", "listPrice", "amount", "abc"),
		rec("itemNumber", "B1", "type", "listPrice", "amount", "5.00"),
	)
	r := New(Sources{Prices: prices}, Fields{})

	price, ok := r.ResolvePrice("B1")
	require.True(t, ok)
	assert.Equal(t, "5", price.Regular.Decimal.String())
	assert.Equal(t, 1, r.Errors().Count)
	assert.Equal(t, "B1", r.Errors().Samples[0].ItemKey)
}

func TestResolvePriceFallbackScan(t *testing.T) {
	// feed keyed by an internal id instead of the item number
	prices := types.NewCollection(types.CollectMulti)
	prices.Add("row-1", rec("itemNumber", "X9", "type", "listPrice", "amount", "3.00"))
	prices.Add("row-2", rec("itemNumber", "X9", "type", "discountPrice", "amount", "2.50"))
	prices.Add("row-3", rec("itemNumber", "X8", "type", "listPrice", "amount", "7.00"))

	r := New(Sources{Prices: prices}, Fields{})
	price, ok := r.ResolvePrice("X9")
	require.True(t, ok)
	assert.Equal(t, "3", price.Regular.Decimal.String())
	assert.Equal(t, "2.5", price.Sale.Decimal.String())

	price, ok = r.ResolvePrice("X8")
	require.True(t, ok)
	assert.Equal(t, "7", price.Regular.Decimal.String())
}

func TestResolveStock(t *testing.T) {
	stock := types.NewCollection(types.CollectMulti)
	stock.Add("X1", rec("itemNumber", "X1", "type", "central_stock", "amount", "5"))
	stock.Add("X1", rec("itemNumber", "X1", "type", "incoming_to_central_stock", "amount", "20"))
	stock.Add("X2", rec("itemNumber", "X2", "type", "central_stock", "amount", "0"))
	stock.Add("X2", rec("itemNumber", "X2", "type", "incoming_to_central_stock", "amount", "100"))
	stock.Add("X3", rec("itemNumber", "X3", "quantity", "4"))
	stock.Add("X3", rec("itemNumber", "X3", "quantity", "6"))
	stock.Add("X4", rec("itemNumber", "X4", "quantity", "-3"))

	r := New(Sources{Stock: stock}, Fields{})

	s := r.ResolveStock("X1")
	assert.Equal(t, 5, s.Quantity)
	assert.Equal(t, 20, s.Incoming)
	assert.True(t, s.Found)

	s = r.ResolveStock("X2")
	assert.Equal(t, 0, s.Quantity, "incoming stock is never added")
	assert.Equal(t, 100, s.Incoming)

	assert.Equal(t, 10, r.ResolveStock("X3").Quantity)
	assert.Equal(t, 0, r.ResolveStock("X4").Quantity)

	s = r.ResolveStock("missing")
	assert.False(t, s.Found)
	assert.Equal(t, 0, s.Quantity)
}

func TestResolveMarkings(t *testing.T) {
	nested := types.Record{
		"itemNumber": types.StringValue("AP1"),
		"markings": types.RecordValue(types.Record{
			"marking": types.ListValue([]types.Record{
				rec("technology", "T1", "position", "korpus", "maxPrintArea", "40x10 mm", "maxColors", "2"),
				rec("technology", "L1", "position", "klips"),
			}),
		}),
	}
	labeling := multi("AP1", nested)
	labeling.Add("AP2", rec("itemNumber", "AP2", "technology", "S1", "position", "front"))
	labeling.Add("AP3", rec("itemNumber", "AP3"))

	r := New(Sources{Labeling: labeling}, Fields{})

	got := r.ResolveMarkings("AP1")
	require.Len(t, got, 2)
	assert.Equal(t, Marking{Technology: "T1", Position: "korpus", MaxArea: "40x10 mm", MaxColors: "2"}, got[0])
	assert.Equal(t, "L1", got[1].Technology)

	assert.Equal(t, []Marking{{Technology: "S1", Position: "front"}}, r.ResolveMarkings("AP2"))
	assert.Empty(t, r.ResolveMarkings("AP3"))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.99", "12.99", false},
		{"12,99", "12.99", false},
		{"1.299,00", "1299", false},
		{"1,299.00", "1299", false},
		{"1 299,00 zł", "1299", false},
		{"15 PLN", "15", false},
		{"", "", true},
		{"PLN", "", true},
		{"n/a", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
