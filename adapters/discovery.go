package adapters

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"furniture-extractor/internal/types"
	"furniture-extractor/utils"
)

// DefaultProductPathPatterns are the path shapes that identify product-detail links
var DefaultProductPathPatterns = []string{"/product/", "/products/", "/item/"}

// DiscoverProductURLs collects product-detail URLs from a listing page.
// Relative links are resolved against the vendor base URL; the result is
// de-duplicated in document order and capped at max. No matches is not an error.
func DiscoverProductURLs(doc *goquery.Document, profile types.VendorProfile, max int) ([]string, error) {
	base, err := url.Parse(profile.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url for %s: %w", profile.ID, err)
	}

	patterns := profile.ProductPathPatterns
	if len(patterns) == 0 {
		patterns = DefaultProductPathPatterns
	}

	var productURLs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := utils.ResolveURL(href, base)
		if resolved == "" || !matchesProductPath(resolved, patterns) {
			return
		}
		if len(profile.Domains) > 0 && !utils.HostMatches(resolved, profile.Domains) {
			return
		}
		productURLs = append(productURLs, resolved)
	})

	productURLs = utils.RemoveDuplicateURLs(productURLs)
	if max > 0 && len(productURLs) > max {
		productURLs = productURLs[:max]
	}
	return productURLs, nil
}

func matchesProductPath(rawURL string, patterns []string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, p := range patterns {
		if strings.Contains(path, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// ListingURL joins a listing path onto the vendor base URL
func ListingURL(profile types.VendorProfile, path string) (string, error) {
	base, err := url.Parse(profile.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url for %s: %w", profile.ID, err)
	}
	resolved := utils.ResolveURL(path, base)
	if resolved == "" {
		return "", fmt.Errorf("invalid listing path %q for %s", path, profile.ID)
	}
	return resolved, nil
}
