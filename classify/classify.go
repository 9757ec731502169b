// Package classify infers taxonomy from free-text product names and descriptions.
package classify

import (
	"strings"
	"unicode"

	"furniture-extractor/internal/types"
)

// Defaults returned when no rule matches
const (
	DefaultCategory = "General"
	DefaultRoom     = "General"
	DefaultMaterial = "Mixed Materials"
	DefaultStyle    = "Transitional"
)

// Rule maps any of its keywords to a label. Keywords match at word starts,
// so "table" matches "tables" and "tablecloth" but not "stable".
type Rule struct {
	Label    string
	Keywords []string
}

// Ordered rule tables; the first matching rule wins
var (
	CategoryRules = []Rule{
		{Label: "Lighting", Keywords: []string{"lamp", "chandelier", "sconce", "pendant", "lantern", "lighting", "light fixture", "ceiling light", "wall light", "floor light", "night light", "string light", "flush mount"}},
		{Label: "Rugs", Keywords: []string{"rug", "runner", "carpet"}},
		{Label: "Beds", Keywords: []string{"bed", "headboard", "daybed", "crib", "mattress"}},
		{Label: "Seating", Keywords: []string{"chair", "stool", "sofa", "sectional", "bench", "ottoman", "loveseat", "settee", "chaise", "recliner"}},
		{Label: "Tables", Keywords: []string{"table", "desk", "console", "nightstand", "side table"}},
		{Label: "Storage", Keywords: []string{"cabinet", "dresser", "chest", "bookcase", "shelf", "shelving", "sideboard", "credenza", "buffet", "armoire", "etagere", "bar cart"}},
		{Label: "Decor", Keywords: []string{"mirror", "vase", "pillow", "throw", "art", "sculpture", "bowl", "tray", "planter", "clock", "candle"}},
	}

	RoomRules = []Rule{
		{Label: "Bedroom", Keywords: []string{"bed", "nightstand", "dresser", "headboard", "armoire", "vanity"}},
		{Label: "Dining Room", Keywords: []string{"dining", "sideboard", "buffet", "bar stool", "counter stool", "china"}},
		{Label: "Office", Keywords: []string{"desk", "office", "bookcase", "filing"}},
		{Label: "Outdoor", Keywords: []string{"outdoor", "patio", "garden", "teak"}},
		{Label: "Bathroom", Keywords: []string{"bath", "towel"}},
		{Label: "Entryway", Keywords: []string{"entry", "hall", "console", "coat"}},
		{Label: "Living Room", Keywords: []string{"sofa", "sectional", "coffee table", "loveseat", "accent chair", "lounge", "media", "tv stand", "ottoman"}},
	}

	MaterialRules = []Rule{
		{Label: "Wood", Keywords: []string{"oak", "walnut", "teak", "mango", "acacia", "pine", "maple", "ash", "elm", "cherry", "mahogany", "wood", "reclaimed"}},
		{Label: "Metal", Keywords: []string{"iron", "steel", "brass", "metal", "aluminum", "bronze", "copper", "nickel", "chrome"}},
		{Label: "Leather", Keywords: []string{"leather", "suede"}},
		{Label: "Stone", Keywords: []string{"marble", "stone", "granite", "travertine", "concrete", "terrazzo", "quartz", "slate"}},
		{Label: "Glass", Keywords: []string{"glass", "crystal", "acrylic", "lucite"}},
		{Label: "Woven", Keywords: []string{"rattan", "wicker", "jute", "seagrass", "cane", "rope", "abaca"}},
		{Label: "Fabric", Keywords: []string{"linen", "velvet", "boucle", "cotton", "wool", "fabric", "upholstered", "performance", "chenille"}},
		{Label: "Ceramic", Keywords: []string{"ceramic", "porcelain", "stoneware", "terracotta"}},
	}

	StyleRules = []Rule{
		{Label: "Mid-Century Modern", Keywords: []string{"mid-century", "mid century", "midcentury", "retro"}},
		{Label: "Industrial", Keywords: []string{"industrial", "factory", "loft", "riveted"}},
		{Label: "Farmhouse", Keywords: []string{"farmhouse", "rustic", "barn", "reclaimed", "distressed"}},
		{Label: "Coastal", Keywords: []string{"coastal", "beach", "nautical", "seaside"}},
		{Label: "Bohemian", Keywords: []string{"boho", "bohemian", "macrame", "global"}},
		{Label: "Traditional", Keywords: []string{"traditional", "classic", "tufted", "carved", "victorian", "georgian", "wingback"}},
		{Label: "Scandinavian", Keywords: []string{"scandinavian", "nordic", "danish"}},
		{Label: "Modern", Keywords: []string{"modern", "contemporary", "minimalist", "sleek"}},
	}
)

// Classify is total: every dimension falls back to its default
func Classify(name, description string) types.Classification {
	nameText := normalize(name)
	allText := normalize(name + " " + description)

	category := match(CategoryRules, nameText)
	if category == "" {
		category = match(CategoryRules, allText)
	}

	return types.Classification{
		Category: orDefault(category, DefaultCategory),
		RoomType: orDefault(match(RoomRules, allText), DefaultRoom),
		Material: orDefault(match(MaterialRules, allText), DefaultMaterial),
		Style:    orDefault(match(StyleRules, allText), DefaultStyle),
	}
}

// WithListingCategory applies a vendor listing-path category when keyword rules found none
func WithListingCategory(c types.Classification, listingCategory string) types.Classification {
	if c.Category == DefaultCategory && listingCategory != "" {
		c.Category = listingCategory
	}
	return c
}

func match(rules []Rule, text string) string {
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, " "+kw) {
				return rule.Label
			}
		}
	}
	return ""
}

// normalize lower-cases text, turns punctuation (except hyphens) into spaces and
// pads with a leading space so word-start matching works at the beginning
func normalize(s string) string {
	var b strings.Builder
	b.WriteByte(' ')
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
