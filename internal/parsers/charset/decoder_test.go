package charset

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name     string
		content  []byte
		expected Encoding
	}{
		{
			name:     "UTF-8 BOM",
			content:  []byte{0xEF, 0xBB, 0xBF, '<', 'a', '/', '>'},
			expected: EncodingUTF8,
		},
		{
			name:     "plain UTF-8 with Polish letters",
			content:  []byte("<nazwa>Kubek ceramiczny żółty</nazwa>"),
			expected: EncodingUTF8,
		},
		{
			name:     "windows-1250 bytes without declaration",
			content:  []byte{'<', 'a', '>', 0xBF, 0xF3, 0xB3, 't', 'y', '<', '/', 'a', '>'},
			expected: EncodingWindows1250,
		},
		{
			name:     "declared iso-8859-2 with legacy bytes",
			content:  append([]byte(`<?xml version="1.0" encoding="ISO-8859-2"?><a>`), 0xB1, 0xEA),
			expected: EncodingISO88592,
		},
		{
			name:     "declared windows-1250 but UTF-8 body",
			content:  []byte(`<?xml version="1.0" encoding="windows-1250"?><a>żółty</a>`),
			expected: EncodingUTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.content))
		})
	}
}

func TestNewReaderTranscodesWindows1250(t *testing.T) {
	// "żółty" in windows-1250
	src := []byte{0xBF, 0xF3, 0xB3, 't', 'y'}

	r, enc, err := NewReader(strings.NewReader(string(src)), EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, EncodingWindows1250, enc)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "żółty", string(out))
}

func TestNewReaderStripsBOM(t *testing.T) {
	r, enc, err := NewReader(strings.NewReader("\xEF\xBB\xBF<a>x</a>"), EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, enc)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<a>x</a>", string(out))
}

func TestDecode(t *testing.T) {
	out, err := Decode([]byte{0xA3, 0xF3, 'd', 0x9F}, EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "Łódź", out)

	out, err = Decode([]byte("Łódź"), EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "Łódź", out)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, EncodingWindows1250, NormalizeName("CP1250"))
	assert.Equal(t, EncodingISO88592, NormalizeName("latin2"))
	assert.Equal(t, EncodingUTF8, NormalizeName("UTF8"))
	assert.Equal(t, EncodingAuto, NormalizeName(""))
}
