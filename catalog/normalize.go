package catalog

import (
	"fmt"
	"strings"

	"furniture-extractor/adapters"
	"furniture-extractor/internal/types"
)

// MaxImages bounds the images owned by one record
const MaxImages = 5

// Normalize merges a raw extraction, its accepted images and its classification
// into a canonical record. It returns ErrInsufficient when the record has no name,
// or has neither a price nor an image. Timestamps and the primary id are left to the store.
func Normalize(raw *types.RawExtraction, images []types.ImageAsset, class types.Classification) (*types.ProductRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: no extraction", types.ErrInsufficient)
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name at %s", types.ErrInsufficient, raw.SourceURL)
	}

	price := adapters.ParsePrice(raw.PriceText)
	if !price.Valid && len(images) == 0 {
		return nil, fmt.Errorf("%w: no price and no image at %s", types.ErrInsufficient, raw.SourceURL)
	}

	if len(images) > MaxImages {
		images = images[:MaxImages]
	}
	owned := make([]types.ImageAsset, len(images))
	copy(owned, images)

	var sku *string
	if s := strings.TrimSpace(raw.SKU); s != "" {
		sku = &s
	}

	vendor := strings.TrimSpace(raw.Vendor)
	return &types.ProductRecord{
		IdentityKey: IdentityKey(vendor, name, raw.SKU),
		VendorID:    raw.VendorID,
		Vendor:      vendor,
		Name:        name,
		Price:       price,
		SKU:         sku,
		Category:    class.Category,
		RoomType:    class.RoomType,
		Style:       class.Style,
		Color:       strings.TrimSpace(raw.Finish),
		Material:    class.Material,
		Dimensions:  strings.TrimSpace(raw.Dimensions),
		Description: strings.TrimSpace(raw.Description),
		Images:      owned,
		SourceURL:   raw.SourceURL,
		Available:   adapters.IsAvailable(raw.AvailabilityText),
	}, nil
}
