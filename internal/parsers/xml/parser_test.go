package xml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

const productsXML = `<?xml version="1.0" encoding="UTF-8"?>
<products>
  <product>
    <itemNumber>AP100</itemNumber>
    <name>Kubek</name>
    <images><image>a.jpg</image><image>b.jpg</image></images>
    <price type="listPrice">10.00</price>
  </product>
  <product>
    <itemNumber>AP100-01</itemNumber>
    <name>Kubek biały</name>
  </product>
  <product code="AP200">
    <name>Długopis</name>
  </product>
  <product>
    <name>No key</name>
  </product>
</products>`

func TestReaderSingleMode(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.ElementName = "product"
	opts.KeyFields = []string{"itemNumber", "@_code"}
	opts.Feed = "products"

	coll, stats, err := NewReader(opts).Read(strings.NewReader(productsXML))
	require.NoError(t, err)

	assert.Equal(t, []string{"AP100", "AP100-01", "AP200"}, coll.Keys())
	assert.Equal(t, 4, stats.Elements)
	assert.Equal(t, 3, stats.Collected)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Errors.Count)
	assert.Equal(t, "products", stats.Errors.Samples[0].Feed)

	rec, ok := coll.Get("AP100")
	require.True(t, ok)
	assert.Equal(t, "Kubek", rec.String("name"))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, rec.Strings("images.image"))
	assert.Equal(t, "10.00", rec.String("price"))
	assert.Equal(t, "listPrice", rec.String("price.@_type"))

	rec, ok = coll.Get("AP200")
	require.True(t, ok)
	assert.Equal(t, "Długopis", rec.String("name"))
}

func TestReaderMultiMode(t *testing.T) {
	src := `<prices>
  <price><itemNumber>X1</itemNumber><type>listPrice</type><amount>10.00</amount></price>
  <price><itemNumber>X1</itemNumber><type>discountPrice</type><amount>8.00</amount></price>
  <price><itemNumber>X2</itemNumber><type>listPrice</type><amount>3.00</amount></price>
</prices>`

	opts := DefaultReaderOptions()
	opts.ElementName = "price"
	opts.KeyFields = []string{"itemNumber"}
	opts.Mode = types.CollectMulti

	coll, _, err := NewReader(opts).Read(strings.NewReader(src))
	require.NoError(t, err)

	entries := coll.All("X1")
	require.Len(t, entries, 2)
	assert.Equal(t, "listPrice", entries[0].String("type"))
	assert.Equal(t, "discountPrice", entries[1].String("type"))
	assert.Len(t, coll.All("X2"), 1)
}

func TestReaderLimit(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.ElementName = "product"
	opts.KeyFields = []string{"itemNumber", "@_code"}
	opts.Limit = 2

	coll, stats, err := NewReader(opts).Read(strings.NewReader(productsXML))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Elements)
	assert.Equal(t, []string{"AP100", "AP100-01"}, coll.Keys())
}

func TestReaderWindows1250(t *testing.T) {
	// "Żółw" in windows-1250
	src := []byte("<?xml version=\"1.0\" encoding=\"windows-1250\"?><items><item><id>1</id><name>\xaf\xf3\xb3w</name></item></items>")

	opts := DefaultReaderOptions()
	opts.ElementName = "item"
	opts.KeyFields = []string{"id"}

	coll, _, err := NewReader(opts).Read(strings.NewReader(string(src)))
	require.NoError(t, err)
	rec, ok := coll.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Żółw", rec.String("name"))
}

func TestReaderErrors(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.ElementName = "product"
	opts.KeyFields = []string{"itemNumber"}

	t.Run("missing file", func(t *testing.T) {
		_, _, err := NewReader(opts).ReadFile(filepath.Join(t.TempDir(), "nope.xml"))
		assert.ErrorIs(t, err, types.ErrSourceNotFound)
	})

	t.Run("malformed root", func(t *testing.T) {
		_, _, err := NewReader(opts).Read(strings.NewReader("not xml at all"))
		assert.ErrorIs(t, err, types.ErrMalformedSource)
	})

	t.Run("truncated document keeps earlier records", func(t *testing.T) {
		src := `<products><product><itemNumber>A1</itemNumber></product><product><itemNumber>A2</itemNum`
		coll, stats, err := NewReader(opts).Read(strings.NewReader(src))
		require.NoError(t, err)
		assert.True(t, stats.Truncated)
		assert.True(t, coll.Has("A1"))
		assert.False(t, coll.Has("A2"))
	})

	t.Run("file on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.xml")
		require.NoError(t, os.WriteFile(path, []byte(productsXML), 0644))
		coll, _, err := NewReader(opts).ReadFile(path)
		require.NoError(t, err)
		assert.True(t, coll.Has("AP100"))
	})
}
