package grouping

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	tb, err := tables.Default()
	require.NoError(t, err)
	return New(tb, zerolog.Nop())
}

func collectionOf(keys ...string) *types.Collection {
	c := types.NewCollection(types.CollectSingle)
	for _, k := range keys {
		c.Add(k, types.Record{"code": types.StringValue(k)})
	}
	return c
}

func TestParse(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		key   string
		base  string
		code  string
		color string
		size  string
	}{
		{"AP100-01", "AP100", "01", "01", ""},
		{"AP100_XL", "AP100", "XL", "", "XL"},
		{"AP100_16GB", "AP100", "16GB", "", "16GB"},
		{"AP100_42", "AP100", "42", "", "42"},
		{"AP100-01_XL", "AP100", "01_XL", "01", "XL"},
		{"AP100_02_M", "AP100", "02_M", "02", "M"},
		{"R17450.01", "R17450.01", "", "", ""},
		{"AP100", "AP100", "", "", ""},
		{"AP100-1", "AP100-1", "", "", ""},
		{"AP100_XXL_01", "AP100_XXL_01", "", "", ""},
		{"MO-8611-03", "MO-8611", "03", "03", ""},
		{"MO-8611-03_XL", "MO-8611", "03_XL", "03", "XL"},
		{"AP100_xl", "AP100", "xl", "", "xl"},
		{"AP100_16gb", "AP100", "16gb", "", "16gb"},
		{"AB-12-34", "AB-12-34", "", "", ""},
		{"", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := e.Parse(tt.key)
			assert.Equal(t, tt.base, s.Base)
			assert.Equal(t, tt.code, s.Code)
			assert.Equal(t, tt.color, s.ColorCode)
			assert.Equal(t, tt.size, s.Size)
			if s.Code != "" {
				// base + separator + variant code reassembles the key
				assert.Equal(t, tt.key, s.Base+tt.key[len(s.Base):len(s.Base)+1]+s.Code)
			}
		})
	}
}

func TestExtractBaseSKUIdempotent(t *testing.T) {
	e := newEngine(t)
	keys := []string{
		"AP100-01", "AP100_XL", "AP100-01_XL", "AP100_02_M", "X-1-01", "A_B_C", "V.1_S", "a-b-c-01",
		"MO-8611-03", "AP100_xl", "AP100_XXL_01", "AB-12-34", "A_01_02", "K-01-02_m",
	}
	for _, k := range keys {
		base := e.ExtractBaseSKU(k)
		assert.Equal(t, base, e.ExtractBaseSKU(base), k)
	}
}

func TestGroupHyphenatedBaseAndLowercaseSize(t *testing.T) {
	e := newEngine(t)
	res := e.Group(collectionOf("MO-8611", "MO-8611-03", "MO-8611-05", "AP100_xl", "AP100_s"))

	assert.Empty(t, res.Simple)
	require.Len(t, res.Variable, 2)

	mo := res.Variable[0]
	assert.Equal(t, "MO-8611", mo.BaseSKU)
	assert.True(t, mo.HasMain)
	require.Len(t, mo.Variants, 2)
	assert.Equal(t, "03", mo.Variants[0].ColorCode)

	ap := res.Variable[1]
	assert.Equal(t, "AP100", ap.BaseSKU)
	assert.False(t, ap.HasMain)
	require.Len(t, ap.Variants, 2)
	assert.Equal(t, "XL", ap.Variants[0].Size)
	assert.Equal(t, "S", ap.Variants[1].Size)
}

func TestGroupColorVariants(t *testing.T) {
	e := newEngine(t)

	res := e.Group(collectionOf("AP100", "AP100-01", "AP100-02"))
	assert.Empty(t, res.Simple)
	require.Len(t, res.Variable, 1)

	g := res.Variable[0]
	assert.Equal(t, "AP100", g.BaseSKU)
	assert.True(t, g.HasMain)
	assert.Equal(t, "AP100", g.Main.String("code"))
	require.Len(t, g.Variants, 2)
	assert.Equal(t, "Biały", g.Variants[0].Color)
	assert.Equal(t, "Czarny", g.Variants[1].Color)
	assert.Equal(t, "AP100-01", g.Variants[0].Key)
}

func TestGroupWithoutMain(t *testing.T) {
	e := newEngine(t)

	res := e.Group(collectionOf("M200_XL", "M200_2XL", "M300-77"))
	require.Len(t, res.Variable, 2)

	g := res.Variable[0]
	assert.Equal(t, "M200", g.BaseSKU)
	assert.False(t, g.HasMain)
	assert.Equal(t, "M200_XL", g.Source().String("code"))
	assert.Equal(t, "XXL", g.Variants[1].Size)

	assert.Equal(t, "Kolor-77", res.Variable[1].Variants[0].Color)
}

func TestGroupSimpleReclassification(t *testing.T) {
	e := newEngine(t)

	res := e.Group(collectionOf("P1", "P2-01", "P2", "P3"))
	require.Len(t, res.Simple, 2)
	assert.Equal(t, "P1", res.Simple[0].SKU)
	assert.Equal(t, "P3", res.Simple[1].SKU)
	require.Len(t, res.Variable, 1)
	assert.Equal(t, "P2", res.Variable[0].BaseSKU)
	for _, g := range res.Variable {
		assert.NotEmpty(t, g.Variants)
	}
}

func TestGroupDeterministic(t *testing.T) {
	e := newEngine(t)
	keys := []string{"B1-01", "A1", "B1", "A1_S", "C9", "B1-02"}

	first := e.Group(collectionOf(keys...))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Group(collectionOf(keys...)))
	}
	assert.Equal(t, "B1", first.Variable[0].BaseSKU)
	assert.Equal(t, "A1", first.Variable[1].BaseSKU)
}
