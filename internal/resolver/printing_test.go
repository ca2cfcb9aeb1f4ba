package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

const printingJSON = `{
  "technologies": {
    "T1": [
      {"quantity_from": 100, "quantity_to": 499, "colors": 1, "unit_price": "0,35", "setup_cost": "60.00"},
      {"quantity_from": 1, "quantity_to": 99, "colors": 1, "unit_price": "0.50", "setup_cost": "60.00"}
    ],
    "L1": [
      {"from": 1, "price": 1.2, "setup": 40}
    ],
    "bad": "not an array"
  }
}`

func TestParsePrintingPrices(t *testing.T) {
	pp, err := ParsePrintingPrices([]byte(printingJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"L1", "T1"}, pp.Codes())
	require.Len(t, pp["T1"], 2)
	assert.Equal(t, 1, pp["T1"][0].QuantityFrom)
	assert.Equal(t, "0.5", pp["T1"][0].UnitPrice.String())
	assert.Equal(t, "0.35", pp["T1"][1].UnitPrice.String())
	assert.Equal(t, "40", pp["L1"][0].SetupCost.String())

	sub := pp.For([]string{"T1", "XX"})
	assert.Len(t, sub, 1)

	r := New(Sources{Printing: pp}, Fields{})
	assert.Len(t, r.PrintingPrices([]string{"L1"}), 1)
	assert.Nil(t, New(Sources{}, Fields{}).PrintingPrices([]string{"L1"}))
}

func TestLoadPrintingPricesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPrintingPrices(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, types.ErrSourceNotFound)

	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"T1": [`), 0644))
	_, err = LoadPrintingPrices(path)
	assert.ErrorIs(t, err, types.ErrMalformedSource)

	require.NoError(t, os.WriteFile(path, []byte(`[1,2]`), 0644))
	_, err = LoadPrintingPrices(path)
	assert.ErrorIs(t, err, types.ErrMalformedSource)
}
