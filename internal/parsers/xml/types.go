package xml

import (
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/parsers/charset"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// ReaderOptions configures the streaming XML reader
type ReaderOptions struct {
	// ElementName is the local name of the repeating record element (e.g. "product")
	ElementName string `json:"elementName"`
	// KeyFields are tried in order; the first non-empty value keys the record.
	// Attributes are addressed with the attribute prefix (e.g. "@_id").
	KeyFields []string `json:"keyFields"`
	// Mode selects single (last wins) or multi (append) collection
	Mode types.CollectMode `json:"mode"`
	// Limit stops after N matching elements; 0 means unlimited
	Limit int `json:"limit,omitempty"`
	// Encoding of the file; "auto" sniffs the declaration and content
	Encoding charset.Encoding `json:"encoding,omitempty"`
	// AttributePrefix is prepended to attribute names. Default: "@_"
	AttributePrefix string `json:"attributePrefix,omitempty"`
	// Feed names the feed in record errors
	Feed string `json:"feed,omitempty"`
}

// DefaultReaderOptions returns default XML reader options
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Mode:            types.CollectSingle,
		Encoding:        charset.EncodingAuto,
		AttributePrefix: "@_",
	}
}
