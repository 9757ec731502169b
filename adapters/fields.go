package adapters

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"furniture-extractor/internal/types"
	"furniture-extractor/utils"
)

// Field names used in miss reports
const (
	FieldName         = "name"
	FieldPrice        = "price"
	FieldSKU          = "sku"
	FieldDimensions   = "dimensions"
	FieldDescription  = "description"
	FieldFinish       = "finish"
	FieldImages       = "images"
	FieldAvailability = "availability"
)

// FieldExtractor evaluates a vendor profile's strategy lists against a rendered product page
type FieldExtractor struct {
	registry *Registry
	logger   types.Logger
}

// NewFieldExtractor creates a field extractor that attributes vendors through registry
func NewFieldExtractor(registry *Registry, logger types.Logger) *FieldExtractor {
	return &FieldExtractor{
		registry: registry,
		logger:   logger,
	}
}

// ParseHTML parses HTML content into a goquery document
func ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Extract reads every canonical field from html. A field whose strategies are all
// exhausted is left empty and listed in Misses; that is never an error.
func (f *FieldExtractor) Extract(profile types.VendorProfile, pageURL, html string) (*types.RawExtraction, error) {
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}
	return f.ExtractDocument(profile, pageURL, doc)
}

// ExtractDocument is Extract for an already parsed document
func (f *FieldExtractor) ExtractDocument(profile types.VendorProfile, pageURL string, doc *goquery.Document) (*types.RawExtraction, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid product url %q: %w", pageURL, err)
	}

	raw := &types.RawExtraction{
		VendorID:  profile.ID,
		Vendor:    f.vendorName(profile, pageURL),
		SourceURL: pageURL,
	}

	fields := withCommonFields(profile.Fields)
	text := func(field string, list types.StrategyList) string {
		value, index, ok := list.First(doc)
		if !ok {
			raw.Misses = append(raw.Misses, field)
			return ""
		}
		f.logger.WithFields(logrus.Fields{
			"vendor": profile.ID,
			"field":  field,
			"index":  index,
		}).Trace("strategy committed")
		return value
	}

	raw.Name = text(FieldName, fields.Name)
	raw.PriceText = text(FieldPrice, fields.Price)
	raw.SKU = text(FieldSKU, fields.SKU)
	raw.Dimensions = text(FieldDimensions, fields.Dimensions)
	raw.Description = text(FieldDescription, fields.Description)
	raw.Finish = text(FieldFinish, fields.Finish)
	raw.AvailabilityText = text(FieldAvailability, fields.Availability)
	f.fillFromSpecs(profile, doc, raw)

	var imageURLs []string
	for _, candidate := range fields.Images.All(doc) {
		if resolved := utils.ResolveURL(candidate, base); resolved != "" {
			imageURLs = append(imageURLs, resolved)
		}
	}
	raw.ImageURLs = utils.RemoveDuplicateURLs(imageURLs)
	if len(raw.ImageURLs) == 0 {
		raw.Misses = append(raw.Misses, FieldImages)
	}

	return raw, nil
}

// fillFromSpecs resolves dimension, finish and SKU misses from the page's specification table
func (f *FieldExtractor) fillFromSpecs(profile types.VendorProfile, doc *goquery.Document, raw *types.RawExtraction) {
	targets := map[string]*string{
		FieldDimensions: &raw.Dimensions,
		FieldFinish:     &raw.Finish,
		FieldSKU:        &raw.SKU,
	}
	pending := slices.ContainsFunc(raw.Misses, func(field string) bool {
		_, ok := targets[field]
		return ok
	})
	if !pending {
		return
	}

	specs, ok := FindSpecTable(doc, profile)
	if !ok {
		return
	}
	values := map[string]string{
		FieldDimensions: specs.Dimensions(),
		FieldFinish:     specs[SpecFinish],
		FieldSKU:        specs[SpecSKU],
	}

	var filled []string
	misses := raw.Misses[:0]
	for _, field := range raw.Misses {
		if target, ok := targets[field]; ok && values[field] != "" {
			*target = values[field]
			filled = append(filled, field)
			continue
		}
		misses = append(misses, field)
	}
	raw.Misses = misses

	if len(filled) > 0 {
		f.logger.WithFields(logrus.Fields{
			"vendor": profile.ID,
			"fields": filled,
		}).Debug("filled from specification table")
	}
}

func (f *FieldExtractor) vendorName(profile types.VendorProfile, pageURL string) string {
	if f.registry != nil {
		if p, ok := f.registry.ForURL(pageURL); ok {
			return p.Name
		}
	}
	if profile.Name != "" && profile.ID != GenericVendorID {
		return profile.Name
	}
	return bareHost(pageURL)
}
