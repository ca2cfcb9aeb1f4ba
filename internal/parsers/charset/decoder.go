package charset

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingAuto        Encoding = "auto"
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1250 Encoding = "windows-1250"
	EncodingISO88592    Encoding = "iso-8859-2"
)

// sniffSize is how many leading bytes are inspected for detection
const sniffSize = 4096

var declEncodingRe = regexp.MustCompile(`<\?xml[^?]*encoding=["']([^"']+)["']`)

// NormalizeName maps encoding labels found in feeds to a known Encoding
func NormalizeName(name string) Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return EncodingAuto
	case "utf-8", "utf8":
		return EncodingUTF8
	case "windows-1250", "cp1250", "win-1250", "x-cp1250":
		return EncodingWindows1250
	case "iso-8859-2", "iso8859-2", "latin2", "latin-2":
		return EncodingISO88592
	default:
		return Encoding(strings.ToLower(name))
	}
}

// DetectEncoding detects the encoding of a leading sample of a feed. An XML
// declaration wins unless the sample is valid UTF-8 (suppliers frequently
// declare windows-1250 and ship UTF-8).
func DetectEncoding(data []byte) Encoding {
	if len(data) > sniffSize {
		data = data[:sniffSize]
	}
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return EncodingUTF8
	}
	if validUTF8Prefix(data) {
		return EncodingUTF8
	}
	if m := declEncodingRe.FindSubmatch(data); len(m) > 1 {
		if enc := NormalizeName(string(m[1])); enc != EncodingUTF8 && enc != EncodingAuto {
			return enc
		}
	}
	return EncodingWindows1250
}

// validUTF8Prefix reports whether data is valid UTF-8, tolerating a rune cut
// off at the end of the sample
func validUTF8Prefix(data []byte) bool {
	if utf8.Valid(data) {
		return true
	}
	for i := 1; i <= utf8.UTFMax && i < len(data); i++ {
		if utf8.Valid(data[:len(data)-i]) {
			return !utf8.FullRune(data[len(data)-i:])
		}
	}
	return false
}

// encodingFor returns the x/text decoder for enc, nil for UTF-8
func encodingFor(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingWindows1250:
		return charmap.Windows1250
	case EncodingISO88592:
		return charmap.ISO8859_2
	default:
		return nil
	}
}

// NewReader wraps r so it yields UTF-8. With EncodingAuto the leading bytes
// are sniffed; the UTF-8 BOM is always stripped.
func NewReader(r io.Reader, enc Encoding) (io.Reader, Encoding, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	peek, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", err
	}

	if enc == "" || enc == EncodingAuto {
		enc = DetectEncoding(peek)
	}

	if bytes.HasPrefix(peek, []byte{0xEF, 0xBB, 0xBF}) {
		return transform.NewReader(br, unicode.BOMOverride(transform.Nop)), EncodingUTF8, nil
	}

	// A declared legacy encoding on a UTF-8 body is decoded as UTF-8
	if enc != EncodingUTF8 && validUTF8Prefix(peek) {
		enc = EncodingUTF8
	}

	if e := encodingFor(enc); e != nil {
		return transform.NewReader(br, e.NewDecoder()), enc, nil
	}
	return br, EncodingUTF8, nil
}

// Decode converts a byte buffer from the specified encoding to a UTF-8 string
func Decode(data []byte, enc Encoding) (string, error) {
	if enc == "" || enc == EncodingAuto {
		enc = DetectEncoding(data)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	e := encodingFor(enc)
	if e == nil {
		e = charmap.Windows1250
	}
	out, _, err := transform.Bytes(e.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
