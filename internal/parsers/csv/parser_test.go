package csv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    CsvDelimiter
	}{
		{"comma", "a,b,c\n1,2,3\n4,5,6", DelimiterComma},
		{"semicolon", "a;b;c\n1;2,5;3\n4;5;6", DelimiterSemicolon},
		{"tab", "a\tb\tc\n1\t2\t3", DelimiterTab},
		{"pipe", "a|b|c\n1|2|3", DelimiterPipe},
		{"quoted commas ignored", "kod;opis\nA1;\"kubek, biały, 300 ml\"\nA2;\"pióro, etui\"", DelimiterSemicolon},
		{"empty", "", DelimiterComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.content))
		})
	}
}

func TestSplitCSVLine(t *testing.T) {
	assert.Equal(t, []string{"a", "b;c", `say "hi"`, ""}, SplitCSVLine(`a;"b;c";"say ""hi""";`, ';', '"'))
	assert.Equal(t, []string{"Łódź", "1"}, SplitCSVLine("Łódź,1", ',', '"'))
}

func TestReaderStockSheet(t *testing.T) {
	src := "code;type;amount\r\nMA100;central_stock;5\r\nMA100;incoming_to_central_stock;20\r\n;central_stock;1\r\n\r\nMA200;central_stock;0\r\n"

	opts := DefaultOptions()
	opts.KeyFields = []string{"code"}
	opts.Mode = types.CollectMulti
	opts.Feed = "stock"

	coll, stats, err := NewReader(opts).Read(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"MA100", "MA200"}, coll.Keys())
	assert.Len(t, coll.All("MA100"), 2)
	assert.Equal(t, "incoming_to_central_stock", coll.All("MA100")[1].String("type"))
	assert.Equal(t, 4, stats.Elements)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, "stock", stats.Errors.Samples[0].Feed)
}

func TestReaderLimitAndWindows1250(t *testing.T) {
	// "Żółty" in windows-1250
	src := "id,color\n1,\xaf\xf3\xb3ty\n2,x\n3,y\n"

	opts := DefaultOptions()
	opts.KeyFields = []string{"id"}
	opts.Limit = 2

	coll, stats, err := NewReader(opts).Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Elements)
	rec, ok := coll.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Żółty", rec.String("color"))
	assert.False(t, coll.Has("3"))
}

func TestReaderEmpty(t *testing.T) {
	_, _, err := NewReader(DefaultOptions()).Read(strings.NewReader(""))
	assert.ErrorIs(t, err, types.ErrMalformedSource)
}
