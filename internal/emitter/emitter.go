// Package emitter writes normalized products as the canonical product XML.
package emitter

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// DefaultBatchSize is the number of products between flushes
const DefaultBatchSize = 100

// Options configures a Writer
type Options struct {
	BatchSize int
	Logger    zerolog.Logger
}

// Result describes a completed output file
type Result struct {
	Path   string
	Count  int
	Counts types.ProductCounts
	SHA256 string
}

// Writer streams products into a temp file next to the target path. The
// target only appears, atomically, when Close succeeds.
type Writer struct {
	path    string
	tmp     *os.File
	buf     *bufio.Writer
	hash    hash.Hash
	enc     *xml.Encoder
	opts    Options
	counts  types.ProductCounts
	pending int
	closed  bool
}

// Create opens a writer for path and writes the document prolog
func Create(path string, opts Options) (*Writer, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create output directory: %v", types.ErrOutputWriteFailed, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %v", types.ErrOutputWriteFailed, err)
	}

	h := sha256.New()
	buf := bufio.NewWriterSize(io.MultiWriter(tmp, h), 64*1024)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")

	w := &Writer{path: path, tmp: tmp, buf: buf, hash: h, enc: enc, opts: opts}

	if _, err := buf.WriteString(xml.Header); err != nil {
		w.Abort()
		return nil, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "products"}}); err != nil {
		w.Abort()
		return nil, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	return w, nil
}

// Write appends one product. Every BatchSize products the buffered output is
// flushed to disk.
func (w *Writer) Write(p types.NormalizedProduct) error {
	if w.closed {
		return fmt.Errorf("%w: writer closed", types.ErrOutputWriteFailed)
	}

	if err := w.enc.Encode(toXML(p)); err != nil {
		return fmt.Errorf("%w: encode %s: %v", types.ErrOutputWriteFailed, p.SKU, err)
	}

	w.counts.Products++
	switch p.Type {
	case types.ProductSimple:
		w.counts.Simple++
	case types.ProductVariable:
		w.counts.Variable++
	case types.ProductVariation:
		w.counts.Variations++
	}

	w.pending++
	if w.pending >= w.opts.BatchSize {
		if err := w.flush(); err != nil {
			return err
		}
		w.opts.Logger.Debug().Int("written", w.counts.Products).Msg("Output batch flushed")
	}
	return nil
}

func (w *Writer) flush() error {
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	w.pending = 0
	return nil
}

// Close finishes the document, syncs it and renames it onto the target path
func (w *Writer) Close() (Result, error) {
	if w.closed {
		return Result{}, fmt.Errorf("%w: writer closed", types.ErrOutputWriteFailed)
	}

	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "products"}}); err != nil {
		w.Abort()
		return Result{}, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := w.flush(); err != nil {
		w.Abort()
		return Result{}, err
	}
	if _, err := w.buf.WriteString("\n"); err != nil {
		w.Abort()
		return Result{}, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := w.buf.Flush(); err != nil {
		w.Abort()
		return Result{}, fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := w.tmp.Sync(); err != nil {
		w.Abort()
		return Result{}, fmt.Errorf("%w: sync: %v", types.ErrOutputWriteFailed, err)
	}
	if err := w.tmp.Close(); err != nil {
		w.Abort()
		return Result{}, fmt.Errorf("%w: close: %v", types.ErrOutputWriteFailed, err)
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		w.Abort()
		return Result{}, fmt.Errorf("%w: rename: %v", types.ErrOutputWriteFailed, err)
	}
	w.closed = true

	return Result{
		Path:   w.path,
		Count:  w.counts.Products,
		Counts: w.counts,
		SHA256: hex.EncodeToString(w.hash.Sum(nil)),
	}, nil
}

// Abort discards the temp file; the target path is left untouched
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.tmp.Close()
	os.Remove(w.tmp.Name())
}

// Emit writes all products to path in one call
func Emit(products []types.NormalizedProduct, path string, opts Options) (Result, error) {
	w, err := Create(path, opts)
	if err != nil {
		return Result{}, err
	}
	for _, p := range products {
		if err := w.Write(p); err != nil {
			w.Abort()
			return Result{}, err
		}
	}
	return w.Close()
}

type xmlProduct struct {
	XMLName       xml.Name      `xml:"product"`
	SKU           string        `xml:"sku"`
	Type          string        `xml:"type"`
	ParentSKU     string        `xml:"parent_sku,omitempty"`
	Name          string        `xml:"name"`
	Description   string        `xml:"description"`
	Categories    xmlCategories `xml:"categories"`
	RegularPrice  string        `xml:"regular_price"`
	SalePrice     string        `xml:"sale_price,omitempty"`
	StockQuantity int           `xml:"stock_quantity"`
	StockStatus   string        `xml:"stock_status"`
	Attributes    xmlAttributes `xml:"attributes"`
	Images        xmlImages     `xml:"images"`
	Meta          xmlMetaData   `xml:"meta_data"`
}

type xmlCategories struct {
	Category []string `xml:"category"`
}

type xmlAttributes struct {
	Attribute []xmlAttribute `xml:"attribute"`
}

type xmlAttribute struct {
	Name      string `xml:"name"`
	Value     string `xml:"value"`
	Variation string `xml:"variation"`
	Visible   int    `xml:"visible"`
}

type xmlImages struct {
	Image []xmlImage `xml:"image"`
}

type xmlImage struct {
	Src string `xml:"src,attr"`
}

type xmlMetaData struct {
	Meta []xmlMeta `xml:"meta"`
}

type xmlMeta struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

func toXML(p types.NormalizedProduct) xmlProduct {
	out := xmlProduct{
		SKU:           p.SKU,
		Type:          string(p.Type),
		ParentSKU:     p.ParentSKU,
		Name:          p.Name,
		Description:   p.Description,
		Categories:    xmlCategories{Category: p.CategoryPaths},
		StockQuantity: p.StockQuantity,
		StockStatus:   string(p.StockStatus),
	}
	if p.Price.Valid {
		out.RegularPrice = p.Price.Decimal.StringFixed(2)
	}
	if p.SalePrice.Valid {
		out.SalePrice = p.SalePrice.Decimal.StringFixed(2)
	}

	for _, a := range p.Attributes {
		xa := xmlAttribute{Name: a.Name, Value: a.Value, Variation: "no"}
		if a.IsVariation {
			xa.Variation = "yes"
		}
		if a.Visible {
			xa.Visible = 1
		}
		out.Attributes.Attribute = append(out.Attributes.Attribute, xa)
	}

	for _, src := range p.Images {
		out.Images.Image = append(out.Images.Image, xmlImage{Src: src})
	}

	keys := make([]string, 0, len(p.Meta))
	for k := range p.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Meta.Meta = append(out.Meta.Meta, xmlMeta{Key: k, Value: p.Meta[k]})
	}
	return out
}
