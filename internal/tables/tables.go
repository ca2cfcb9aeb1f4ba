// Package tables holds the read-only lookup tables used while normalizing
// supplier data: color codes, size tokens, SKU suffix patterns, material and
// category keywords and printing technology names.
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// SKUPattern is one item-key suffix convention. Pattern must define a "base"
// group and may define "color" and "size" groups.
type SKUPattern struct {
	Name    string `yaml:"name" json:"name"`
	Pattern string `yaml:"pattern" json:"pattern"`

	re *regexp.Regexp
}

// Match applies the pattern to key
func (p SKUPattern) Match(key string) (base, color, size string, ok bool) {
	m := p.re.FindStringSubmatch(key)
	if m == nil {
		return "", "", "", false
	}
	for i, name := range p.re.SubexpNames() {
		switch name {
		case "base":
			base = m[i]
		case "color":
			color = m[i]
		case "size":
			size = m[i]
		}
	}
	return base, color, size, base != ""
}

// MaterialKeyword maps a name fragment to a material
type MaterialKeyword struct {
	Keyword  string `yaml:"keyword" json:"keyword"`
	Material string `yaml:"material" json:"material"`
}

// CategoryKeyword maps a name fragment to a primary and secondary category
type CategoryKeyword struct {
	Keyword   string `yaml:"keyword" json:"keyword"`
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
}

// Document is the YAML layout of a tables file
type Document struct {
	Colors               map[string]string `yaml:"colors" json:"colors,omitempty"`
	Sizes                map[string]string `yaml:"sizes" json:"sizes,omitempty"`
	SKUPatterns          []SKUPattern      `yaml:"sku_patterns" json:"sku_patterns,omitempty"`
	Materials            []MaterialKeyword `yaml:"materials" json:"materials,omitempty"`
	CategoryKeywords     []CategoryKeyword `yaml:"category_keywords" json:"category_keywords,omitempty"`
	PrintingTechnologies map[string]string `yaml:"printing_technologies" json:"printing_technologies,omitempty"`
}

// Tables is immutable after Load and safe for concurrent use
type Tables struct {
	doc Document
}

// Default returns the embedded tables
func Default() (*Tables, error) {
	return Load("")
}

// Load parses the embedded tables and applies the override file at path, if any
func Load(path string) (*Tables, error) {
	var doc Document
	if err := yaml.Unmarshal(defaultTables, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded tables: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tables file: %w", err)
		}
		var override Document
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse tables file %s: %w", path, err)
		}
		doc.merge(override)
	}

	for i := range doc.SKUPatterns {
		re, err := regexp.Compile(doc.SKUPatterns[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid sku pattern %q: %w", doc.SKUPatterns[i].Name, err)
		}
		if re.SubexpIndex("base") < 0 {
			return nil, fmt.Errorf("sku pattern %q has no base group", doc.SKUPatterns[i].Name)
		}
		doc.SKUPatterns[i].re = re
	}

	for i := range doc.Materials {
		doc.Materials[i].Keyword = lower(doc.Materials[i].Keyword)
	}
	for i := range doc.CategoryKeywords {
		doc.CategoryKeywords[i].Keyword = lower(doc.CategoryKeywords[i].Keyword)
	}

	return &Tables{doc: doc}, nil
}

func (d *Document) merge(o Document) {
	if len(o.Colors) > 0 {
		d.Colors = o.Colors
	}
	if len(o.Sizes) > 0 {
		d.Sizes = o.Sizes
	}
	if len(o.SKUPatterns) > 0 {
		d.SKUPatterns = o.SKUPatterns
	}
	if len(o.Materials) > 0 {
		d.Materials = o.Materials
	}
	if len(o.CategoryKeywords) > 0 {
		d.CategoryKeywords = o.CategoryKeywords
	}
	if len(o.PrintingTechnologies) > 0 {
		d.PrintingTechnologies = o.PrintingTechnologies
	}
}

// ColorName resolves a two-digit color code. Unknown codes render as
// "Kolor-<code>".
func (t *Tables) ColorName(code string) string {
	if name, ok := t.doc.Colors[code]; ok {
		return name
	}
	return "Kolor-" + code
}

// SizeName normalizes a size token ("2XL" -> "XXL", "xl" -> "XL"); other
// tokens are upper-cased
func (t *Tables) SizeName(token string) string {
	upper := strings.ToUpper(token)
	if name, ok := t.doc.Sizes[upper]; ok {
		return name
	}
	return upper
}

// SKUPatterns returns the suffix patterns in priority order
func (t *Tables) SKUPatterns() []SKUPattern {
	out := make([]SKUPattern, len(t.doc.SKUPatterns))
	copy(out, t.doc.SKUPatterns)
	return out
}

// Material infers a material from a product name
func (t *Tables) Material(name string) (string, bool) {
	n := lower(name)
	for _, m := range t.doc.Materials {
		if m.Keyword != "" && strings.Contains(n, m.Keyword) {
			return m.Material, true
		}
	}
	return "", false
}

// CategoryForName maps a product name to categories by keyword
func (t *Tables) CategoryForName(name string) (CategoryKeyword, bool) {
	n := lower(name)
	for _, c := range t.doc.CategoryKeywords {
		if c.Keyword != "" && strings.Contains(n, c.Keyword) {
			return c, true
		}
	}
	return CategoryKeyword{}, false
}

// TechnologyName resolves a printing technology code, falling back to the code
func (t *Tables) TechnologyName(code string) string {
	if name, ok := t.doc.PrintingTechnologies[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// Document returns a copy of the table data, used for dumps and schema output
func (t *Tables) Document() Document {
	return t.doc
}

func lower(s string) string {
	// Casers are stateful and not safe to share between goroutines
	return cases.Lower(language.Polish).String(s)
}
