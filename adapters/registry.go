package adapters

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"furniture-extractor/internal/types"
)

// Registry maps vendor ids to profiles and product domains to vendors.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	profiles map[string]types.VendorProfile
	domains  map[string]string // bare host -> vendor id
}

// NewRegistry builds the registry from the built-in profiles plus extra profiles
// from configuration. An extra profile replaces a built-in one with the same id.
func NewRegistry(extra []types.VendorProfile) *Registry {
	r := &Registry{
		profiles: make(map[string]types.VendorProfile),
		domains:  make(map[string]string),
	}
	for _, p := range builtinProfiles {
		r.add(p)
	}
	for _, p := range extra {
		r.add(p)
	}
	return r
}

func (r *Registry) add(p types.VendorProfile) {
	p.ID = strings.ToLower(strings.TrimSpace(p.ID))
	if old, ok := r.profiles[p.ID]; ok {
		for _, d := range profileDomains(old) {
			delete(r.domains, d)
		}
	}
	p.Fields = withCommonFields(p.Fields)
	r.profiles[p.ID] = p
	for _, d := range profileDomains(p) {
		r.domains[d] = p.ID
	}
}

// Get returns the profile for a vendor id
func (r *Registry) Get(id string) (types.VendorProfile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return types.VendorProfile{}, fmt.Errorf("%w: %s", types.ErrUnknownVendor, id)
	}
	return p, nil
}

// All returns every vendor profile sorted by id
func (r *Registry) All() []types.VendorProfile {
	out := make([]types.VendorProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns every vendor id sorted
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForURL resolves the vendor owning rawURL through the domain table.
// Subdomains match their parent domain.
func (r *Registry) ForURL(rawURL string) (types.VendorProfile, bool) {
	host := bareHost(rawURL)
	for host != "" {
		if id, ok := r.domains[host]; ok {
			return r.profiles[id], true
		}
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			break
		}
		host = host[dot+1:]
	}
	return types.VendorProfile{}, false
}

// ProfileForURL returns the vendor profile for rawURL, or a generic profile named
// after the URL's host when the domain is unknown
func (r *Registry) ProfileForURL(rawURL string) (types.VendorProfile, error) {
	if p, ok := r.ForURL(rawURL); ok {
		return p, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return types.VendorProfile{}, fmt.Errorf("invalid product url %q", rawURL)
	}
	p := genericProfile
	p.Fields = withCommonFields(p.Fields)
	p.Name = bareHost(rawURL)
	p.BaseURL = parsed.Scheme + "://" + parsed.Host
	p.Domains = []string{p.Name}
	return p, nil
}

// VendorName returns the vendor display name for a product URL from the domain table
func (r *Registry) VendorName(rawURL string) string {
	if p, ok := r.ForURL(rawURL); ok {
		return p.Name
	}
	return bareHost(rawURL)
}

func profileDomains(p types.VendorProfile) []string {
	var out []string
	for _, d := range p.Domains {
		if d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www."); d != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 && p.BaseURL != "" {
		if h := bareHost(p.BaseURL); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func bareHost(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// withCommonFields appends the common strategies to a vendor's own; applying it twice is a no-op
func withCommonFields(f types.FieldStrategies) types.FieldStrategies {
	return types.FieldStrategies{
		Name:         concat(f.Name, commonFields.Name),
		Price:        concat(f.Price, commonFields.Price),
		SKU:          concat(f.SKU, commonFields.SKU),
		Dimensions:   concat(f.Dimensions, commonFields.Dimensions),
		Description:  concat(f.Description, commonFields.Description),
		Finish:       concat(f.Finish, commonFields.Finish),
		Images:       concat(f.Images, commonFields.Images),
		Availability: concat(f.Availability, commonFields.Availability),
	}
}

// concat appends the common strategies the vendor list does not already contain
func concat(vendor, common types.StrategyList) types.StrategyList {
	out := make(types.StrategyList, 0, len(vendor)+len(common))
	seen := make(map[types.Strategy]bool, len(vendor)+len(common))
	for _, list := range []types.StrategyList{vendor, common} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
