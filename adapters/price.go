package adapters

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// pricePattern matches the first currency-shaped number: digits with optional
// thousands separators and an optional decimal part
var pricePattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

// ParsePrice extracts a non-negative decimal price from free text.
// Text with no numeric substring yields a null price.
func ParsePrice(text string) decimal.NullDecimal {
	match := pricePattern.FindString(text)
	if match == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

var unavailableMarkers = []string{
	"out of stock", "outofstock", "sold out", "soldout",
	"unavailable", "discontinued", "no longer available",
}

// IsAvailable reports whether availability text describes a purchasable product.
// Empty text counts as available.
func IsAvailable(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range unavailableMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
