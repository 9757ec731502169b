package catalog

import (
	"strings"
	"unicode"
)

// IdentityKey derives the deduplication key for a product: vendor, name and SKU
// lower-cased with everything but letters and digits removed, then concatenated.
// Extractions that produce the same key are the same catalog record.
func IdentityKey(vendor, name, sku string) string {
	var b strings.Builder
	b.Grow(len(vendor) + len(name) + len(sku))
	for _, part := range []string{vendor, name, sku} {
		for _, r := range strings.ToLower(part) {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
