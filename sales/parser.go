// parser.go - Parses delimited point-of-sale text segments.
//
// One segment is a semicolon-delimited list of KEY:VALUE fields, e.g.
// "IDCILINDRO: C100; IDVENDEDOR: V1". Keys are case-insensitive and
// whitespace-tolerant. Fields without a colon are skipped, not errors;
// the devices producing these lines are not reliable enough to reject
// whole segments over one garbled field.
package sales

import "strings"

// Parser keys recognized in a segment.
const (
	keyUnitID   = "IDCILINDRO"
	keySellerID = "IDVENDEDOR"
)

// SaleIntent is the structured form of one parsed segment.
// Empty strings mean the key was absent or malformed.
type SaleIntent struct {
	UnitID   string
	SellerID string
}

// ParseRecord parses one segment into a SaleIntent. It never fails.
func ParseRecord(segment string) SaleIntent {
	var intent SaleIntent
	for _, field := range strings.Split(segment, ";") {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case keyUnitID:
			intent.UnitID = value
		case keySellerID:
			intent.SellerID = value
		}
	}
	return intent
}
