package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"furniture-extractor/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		productName string
		description string
		expected    types.Classification
	}{
		{
			name:        "lounge chair",
			productName: "Cove Lounge Chair",
			description: "Solid walnut frame with boucle upholstery. Mid-century lines.",
			expected:    types.Classification{Category: "Seating", RoomType: "Living Room", Material: "Wood", Style: "Mid-Century Modern"},
		},
		{
			name:        "dining table",
			productName: "Oak Dining Table",
			expected:    types.Classification{Category: "Tables", RoomType: "Dining Room", Material: "Wood", Style: DefaultStyle},
		},
		{
			name:        "table lamp is lighting",
			productName: "Brass Table Lamp",
			expected:    types.Classification{Category: "Lighting", RoomType: DefaultRoom, Material: "Metal", Style: DefaultStyle},
		},
		{
			name:        "plural and punctuation",
			productName: "Bar-Stools (Set of 2)",
			description: "Industrial steel stools.",
			expected:    types.Classification{Category: "Seating", RoomType: DefaultRoom, Material: "Metal", Style: "Industrial"},
		},
		{
			name:        "light as an adjective is not lighting",
			productName: "Lightweight Folding Chair",
			expected:    types.Classification{Category: "Seating", RoomType: DefaultRoom, Material: DefaultMaterial, Style: DefaultStyle},
		},
		{
			name:        "light color on a sofa",
			productName: "Light Gray Linen Sofa",
			expected:    types.Classification{Category: "Seating", RoomType: "Living Room", Material: "Fabric", Style: DefaultStyle},
		},
		{
			name:        "wall light is lighting",
			productName: "Brass Wall Light",
			expected:    types.Classification{Category: "Lighting", RoomType: DefaultRoom, Material: "Metal", Style: DefaultStyle},
		},
		{
			name:        "word start only",
			productName: "Stable Widget",
			expected:    types.Classification{Category: DefaultCategory, RoomType: DefaultRoom, Material: DefaultMaterial, Style: DefaultStyle},
		},
		{
			name:        "category from description when name is vague",
			productName: "The Harlow",
			description: "A tufted velvet sofa for the living room.",
			expected:    types.Classification{Category: "Seating", RoomType: "Living Room", Material: "Fabric", Style: "Traditional"},
		},
		{
			name:     "empty input is total",
			expected: types.Classification{Category: DefaultCategory, RoomType: DefaultRoom, Material: DefaultMaterial, Style: DefaultStyle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.productName, tt.description))
		})
	}
}

func TestWithListingCategory(t *testing.T) {
	general := Classify("The Harlow", "")
	assert.Equal(t, "Rugs", WithListingCategory(general, "Rugs").Category)

	seating := Classify("Cove Chair", "")
	assert.Equal(t, "Seating", WithListingCategory(seating, "Rugs").Category)

	assert.Equal(t, DefaultCategory, WithListingCategory(general, "").Category)
}
