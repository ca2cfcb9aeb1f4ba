package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

func TestReaderTopLevelArray(t *testing.T) {
	src := `[
	  {"code": "M100", "name": "Koszulka", "price": 12.5, "active": true, "sizes": ["S", "M"], "images": [{"url": "a.jpg"}]},
	  {"code": "M100_XL", "name": "Koszulka XL", "discount": null},
	  {"name": "no key"},
	  "stray"
	]`

	coll, stats, err := NewReader(ReaderOptions{KeyFields: []string{"code"}, Feed: "products"}).Read(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"M100", "M100_XL"}, coll.Keys())
	assert.Equal(t, 4, stats.Elements)
	assert.Equal(t, 2, stats.Skipped)

	rec, ok := coll.Get("M100")
	require.True(t, ok)
	assert.Equal(t, "12.5", rec.String("price"))
	assert.Equal(t, "true", rec.String("active"))
	assert.Equal(t, []string{"S", "M"}, rec.Strings("sizes"))
	assert.Equal(t, "a.jpg", rec.String("images.url"))

	rec, _ = coll.Get("M100_XL")
	assert.False(t, rec.Has("discount"))
}

func TestReaderNestedArray(t *testing.T) {
	src := `{"meta": {"count": 2, "tags": ["x"]}, "data": {"items": [
	  {"itemNumber": "X1", "type": "listPrice", "amount": "10.00"},
	  {"itemNumber": "X1", "type": "discountPrice", "amount": "8.00"}
	]}}`

	opts := ReaderOptions{ElementName: "items", KeyFields: []string{"itemNumber"}, Mode: types.CollectMulti}
	coll, _, err := NewReader(opts).Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, coll.All("X1"), 2)
}

func TestReaderLimitAndTruncation(t *testing.T) {
	src := `[{"id":"1"},{"id":"2"},{"id":"3"}]`
	coll, stats, err := NewReader(ReaderOptions{KeyFields: []string{"id"}, Limit: 2}).Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, coll.Keys())
	assert.Equal(t, 2, stats.Elements)

	coll, stats, err = NewReader(ReaderOptions{KeyFields: []string{"id"}}).Read(strings.NewReader(`[{"id":"1"},{"id":`))
	require.NoError(t, err)
	assert.True(t, stats.Truncated)
	assert.True(t, coll.Has("1"))
}

func TestReaderMalformed(t *testing.T) {
	_, _, err := NewReader(ReaderOptions{}).Read(strings.NewReader(`{oops`))
	assert.ErrorIs(t, err, types.ErrMalformedSource)

	_, _, err = NewReader(ReaderOptions{ElementName: "products"}).Read(strings.NewReader(`{"items": []}`))
	assert.ErrorIs(t, err, types.ErrMalformedSource)
}
