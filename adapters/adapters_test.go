package adapters

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture-extractor/internal/types"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // empty means null
	}{
		{name: "dollars with thousands", input: "$1,299.99", want: "1299.99"},
		{name: "plain", input: "$189.00", want: "189"},
		{name: "sale text", input: "Sale: USD 2,450 was 3,100", want: "2450"},
		{name: "millions", input: "1,234,567.5", want: "1234567.5"},
		{name: "no separators", input: "Price 4500", want: "4500"},
		{name: "upon request", input: "Price upon request", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.input)
			if tt.want == "" {
				assert.False(t, got.Valid)
				return
			}
			require.True(t, got.Valid)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Decimal), "got %s", got.Decimal)
		})
	}
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, IsAvailable(""))
	assert.True(t, IsAvailable("In stock, ships in 2 weeks"))
	assert.True(t, IsAvailable("https://schema.org/InStock"))
	assert.False(t, IsAvailable("Sold Out"))
	assert.False(t, IsAvailable("https://schema.org/OutOfStock"))
	assert.False(t, IsAvailable("This item has been discontinued"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(nil)

	t.Run("get known vendor", func(t *testing.T) {
		p, err := r.Get("fourhands")
		require.NoError(t, err)
		assert.Equal(t, "Four Hands", p.Name)
		assert.NotEmpty(t, p.ListingPaths)
		// vendor strategies come before the common ones
		assert.Equal(t, "h1.product__title", p.Fields.Name[0].Selector)
		assert.Greater(t, len(p.Fields.Name), 2)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		_, err := r.Get("nope")
		assert.True(t, errors.Is(err, types.ErrUnknownVendor))
	})

	t.Run("all sorted", func(t *testing.T) {
		all := r.All()
		require.NotEmpty(t, all)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID, all[i].ID)
		}
		assert.Equal(t, len(all), len(r.IDs()))
	})

	t.Run("for url", func(t *testing.T) {
		p, ok := r.ForURL("https://www.fourhands.com/products/cove-chair")
		require.True(t, ok)
		assert.Equal(t, "fourhands", p.ID)

		p, ok = r.ForURL("https://shop.circalighting.com/product/sconce")
		require.True(t, ok)
		assert.Equal(t, "visualcomfort", p.ID)

		_, ok = r.ForURL("https://unknown-vendor.example/products/x")
		assert.False(t, ok)
	})

	t.Run("vendor name from domain", func(t *testing.T) {
		assert.Equal(t, "Four Hands", r.VendorName("https://fourhands.com/products/x"))
		assert.Equal(t, "unknown-vendor.example", r.VendorName("https://www.unknown-vendor.example/p"))
	})

	t.Run("generic profile for unknown domain", func(t *testing.T) {
		p, err := r.ProfileForURL("https://www.unknown-vendor.example/products/x")
		require.NoError(t, err)
		assert.Equal(t, GenericVendorID, p.ID)
		assert.Equal(t, "unknown-vendor.example", p.Name)
		assert.NotEmpty(t, p.Fields.Name)

		_, err = r.ProfileForURL("not a url")
		assert.Error(t, err)
	})

	t.Run("extra profile overrides built-in", func(t *testing.T) {
		r := NewRegistry([]types.VendorProfile{{
			ID:      "fourhands",
			Name:    "Four Hands Trade",
			BaseURL: "https://trade.fourhands.com",
		}})
		p, err := r.Get("fourhands")
		require.NoError(t, err)
		assert.Equal(t, "Four Hands Trade", p.Name)

		_, ok := r.ForURL("https://fourhands.com/products/x")
		assert.False(t, ok)
		p, ok = r.ForURL("https://trade.fourhands.com/products/x")
		require.True(t, ok)
		assert.Equal(t, "Four Hands Trade", p.Name)
	})
}

func TestDiscoverProductURLs(t *testing.T) {
	profile := types.VendorProfile{
		ID:      "acme",
		BaseURL: "https://acme.example",
		Domains: []string{"acme.example"},
	}
	doc, err := ParseHTML(`<html><body>
		<a href="/products/oak-table">Oak Table</a>
		<a href="/products/oak-table#reviews">Oak Table reviews</a>
		<a href="https://www.acme.example/item/42">Item 42</a>
		<a href="product/relative-chair">Chair</a>
		<a href="/about">About</a>
		<a href="mailto:sales@acme.example">Mail</a>
		<a href="javascript:void(0)">JS</a>
		<a href="https://other.example/products/elsewhere">Elsewhere</a>
		<a href="/products/sofa">Sofa</a>
	</body></html>`)
	require.NoError(t, err)

	urls, err := DiscoverProductURLs(doc, profile, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://acme.example/products/oak-table",
		"https://www.acme.example/item/42",
		"https://acme.example/product/relative-chair",
		"https://acme.example/products/sofa",
	}, urls)

	capped, err := DiscoverProductURLs(doc, profile, 2)
	require.NoError(t, err)
	assert.Equal(t, urls[:2], capped)

	empty, err := ParseHTML(`<html><body><a href="/about">About</a></body></html>`)
	require.NoError(t, err)
	none, err := DiscoverProductURLs(empty, profile, 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListingURL(t *testing.T) {
	profile := types.VendorProfile{ID: "acme", BaseURL: "https://acme.example/shop/"}
	u, err := ListingURL(profile, "/collections/lamps")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example/collections/lamps", u)
}

func TestFieldExtractor_Extract(t *testing.T) {
	logger, _ := test.NewNullLogger()
	registry := NewRegistry([]types.VendorProfile{{
		ID:      "acme",
		Name:    "Acme Home",
		BaseURL: "https://acme.example",
		Fields: types.FieldStrategies{
			Name:  types.StrategyList{{Selector: "h1.missing"}, {Selector: ".title"}},
			Price: types.StrategyList{{Selector: ".price-now"}},
		},
	}})
	profile, err := registry.Get("acme")
	require.NoError(t, err)

	extractor := NewFieldExtractor(registry, logger)
	raw, err := extractor.Extract(profile, "https://acme.example/products/widget-a", `<html><head>
		<meta property="og:title" content="Widget A (og)">
	</head><body>
		<h1 class="missing"></h1>
		<div class="title">Widget A</div>
		<span class="price-now">$1,299.99</span>
		<div class="product-gallery">
			<img src="/img/1.jpg"><img src="https://cdn.acme.example/2.jpg"><img src="/img/1.jpg">
		</div>
		<div class="availability">In stock</div>
	</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "acme", raw.VendorID)
	assert.Equal(t, "Acme Home", raw.Vendor)
	assert.Equal(t, "Widget A", raw.Name)
	assert.Equal(t, "$1,299.99", raw.PriceText)
	assert.Equal(t, []string{"https://acme.example/img/1.jpg", "https://cdn.acme.example/2.jpg"}, raw.ImageURLs)
	assert.Equal(t, "In stock", raw.AvailabilityText)
	assert.Contains(t, raw.Misses, FieldSKU)
	assert.Contains(t, raw.Misses, FieldDimensions)
	assert.NotContains(t, raw.Misses, FieldName)
}

func TestFieldExtractor_VendorFromDomainNotPage(t *testing.T) {
	logger, _ := test.NewNullLogger()
	registry := NewRegistry(nil)
	profile, err := registry.Get("fourhands")
	require.NoError(t, err)

	raw, err := NewFieldExtractor(registry, logger).Extract(profile, "https://fourhands.com/products/cove-chair",
		`<html><body><div class="brand">Totally Different Brand</div><h1 class="product__title">Cove Chair</h1></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Four Hands", raw.Vendor)
	assert.Equal(t, "Cove Chair", raw.Name)
	assert.Contains(t, raw.Misses, FieldImages)
}

func TestExtractSpecTable(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		selector   string
		dimensions string
		finish     string
		sku        string
	}{
		{
			name: "label value rows",
			html: `<table class="product-specs">
				<tr><th>Width:</th><td>32 in</td></tr>
				<tr><th>Seat Height</th><td>18 in</td></tr>
				<tr><th>Depth</th><td>34  in</td></tr>
				<tr><th>Height</th><td>30 in</td></tr>
				<tr><th>Finish</th><td>Natural Oak</td></tr>
				<tr><th>Item Number</th><td>FH-1024</td></tr>
			</table>`,
			selector:   "table.product-specs",
			dimensions: "W 32 in x D 34 in x H 30 in",
			finish:     "Natural Oak",
			sku:        "FH-1024",
		},
		{
			name: "header row",
			html: `<table class="specs">
				<thead><tr><th>Overall Dimensions</th><th>Color</th><th>Weight</th></tr></thead>
				<tbody><tr><td>84"W x 38"D x 32"H</td><td>Charcoal</td><td>120 lb</td></tr></tbody>
			</table>`,
			selector:   "table.specs",
			dimensions: `84"W x 38"D x 32"H`,
			finish:     "Charcoal",
		},
		{
			name: "definition list",
			html: `<dl class="product-specs">
				<dt>SKU</dt><dd>VC-77</dd>
				<dt>Height</dt><dd>22 in</dd>
				<dt>Material</dt><dd>Brass</dd>
			</dl>`,
			selector:   "dl.product-specs",
			dimensions: "H 22 in",
			sku:        "VC-77",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseHTML("<html><body>" + tt.html + "</body></html>")
			require.NoError(t, err)

			specs, err := ExtractSpecTable(doc, tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.dimensions, specs.Dimensions())
			assert.Equal(t, tt.finish, specs[SpecFinish])
			assert.Equal(t, tt.sku, specs[SpecSKU])
		})
	}

	t.Run("missing or unrecognized", func(t *testing.T) {
		doc, err := ParseHTML(`<html><body><table class="specs"><tr><td>Weight</td><td>12 lb</td></tr></table></body></html>`)
		require.NoError(t, err)

		_, err = ExtractSpecTable(doc, "table.nope")
		assert.Error(t, err)
		_, err = ExtractSpecTable(doc, "table.specs")
		assert.Error(t, err)
		_, ok := FindSpecTable(doc, types.VendorProfile{})
		assert.False(t, ok)
	})
}

func TestFieldExtractor_FillsFromSpecTable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	registry := NewRegistry([]types.VendorProfile{{
		ID:        "acme",
		Name:      "Acme Home",
		BaseURL:   "https://acme.example",
		SpecTable: "#details table",
	}})
	profile, err := registry.Get("acme")
	require.NoError(t, err)

	raw, err := NewFieldExtractor(registry, logger).Extract(profile, "https://acme.example/products/oak-console", `<html><body>
		<h1>Oak Console</h1>
		<span class="finish">Smoked Oak</span>
		<div id="details"><table>
			<tr><td>Width</td><td>60 in</td></tr>
			<tr><td>Depth</td><td>16 in</td></tr>
			<tr><td>Finish</td><td>Ignored Because Found</td></tr>
		</table></div>
	</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "W 60 in x D 16 in", raw.Dimensions)
	assert.Equal(t, "Smoked Oak", raw.Finish)
	assert.Empty(t, raw.SKU)
	assert.NotContains(t, raw.Misses, FieldDimensions)
	assert.Contains(t, raw.Misses, FieldSKU)
}

func TestFieldExtractor_ProfileOutsideRegistry(t *testing.T) {
	logger, _ := test.NewNullLogger()
	profile := types.VendorProfile{ID: "acme", Name: "Acme Home", BaseURL: "https://acme.example"}

	raw, err := NewFieldExtractor(nil, logger).Extract(profile, "https://acme.example/products/test-lamp", `<html><body>
		<h1>Test Lamp</h1>
		<span class="price">$189.00</span>
		<div class="product-gallery"><img src="/img/lamp.png"></div>
	</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Acme Home", raw.Vendor)
	assert.Equal(t, "Test Lamp", raw.Name)
	assert.Equal(t, "$189.00", raw.PriceText)
	assert.Equal(t, []string{"https://acme.example/img/lamp.png"}, raw.ImageURLs)
	assert.NotContains(t, raw.Misses, FieldName)
	assert.NotContains(t, raw.Misses, FieldPrice)
}

func TestWithCommonFieldsIdempotent(t *testing.T) {
	vendor := types.FieldStrategies{Name: types.StrategyList{{Selector: "h1.product__title"}}}
	once := withCommonFields(vendor)
	assert.Equal(t, once, withCommonFields(once))
	assert.Equal(t, "h1.product__title", once.Name[0].Selector)
	assert.Len(t, once.Name, len(commonFields.Name)+1)
}
