package types

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestStrategyList_FirstFallbackOrder(t *testing.T) {
	doc := parse(t, `<html><body>
		<h1 class="product-title">   </h1>
		<div class="product-name"><h2>Widget A</h2></div>
		<h1>Page Heading</h1>
	</body></html>`)

	list := StrategyList{
		{Selector: "h1.product-title"},
		{Selector: ".product-name h2"},
		{Selector: "h1"},
	}

	value, index, ok := list.First(doc)
	assert.True(t, ok)
	assert.Equal(t, "Widget A", value)
	assert.Equal(t, 1, index)
}

func TestStrategyList_FirstMiss(t *testing.T) {
	doc := parse(t, `<html><body><p>nothing here</p></body></html>`)

	list := StrategyList{{Selector: "h1"}, {Selector: ".title"}, {Selector: "meta[property='og:title']", Attr: "content"}}

	value, index, ok := list.First(doc)
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.Equal(t, -1, index)
}

func TestStrategyList_AttributesAndWhitespace(t *testing.T) {
	doc := parse(t, `<html><head>
		<meta property="og:title" content="Cove   Lounge
			Chair">
	</head><body></body></html>`)

	value, _, ok := StrategyList{{Selector: "meta[property='og:title']", Attr: "content"}}.First(doc)
	assert.True(t, ok)
	assert.Equal(t, "Cove Lounge Chair", value)
}

func TestStrategyList_JSONLD(t *testing.T) {
	doc := parse(t, `<html><head>
		<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList"}</script>
		<script type="application/ld+json">{
			"@context": "https://schema.org",
			"@graph": [
				{"@type": "Organization", "name": "Acme"},
				{"@type": "Product", "name": "Oak Table", "sku": "OT-1",
				 "image": ["https://cdn.example.com/a.jpg", {"@type": "ImageObject", "url": "https://cdn.example.com/b.jpg"}],
				 "offers": [{"@type": "Offer", "price": 1299.5, "availability": "https://schema.org/InStock"}]}
			]
		}</script>
	</head><body></body></html>`)

	ld := `script[type="application/ld+json"]`

	name, _, ok := StrategyList{{Selector: ld, JSONKey: "name"}}.First(doc)
	assert.True(t, ok)
	assert.Equal(t, "Oak Table", name)

	price, _, ok := StrategyList{{Selector: ld, JSONKey: "offers.price"}}.First(doc)
	assert.True(t, ok)
	assert.Equal(t, "1299.5", price)

	images := StrategyList{{Selector: ld, JSONKey: "image"}}.All(doc)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, images)
}

func TestStrategyList_AllUsesFirstProducingStrategy(t *testing.T) {
	doc := parse(t, `<html><body>
		<div class="gallery">
			<img srcset="/img/a-400.jpg 400w, /img/a-1600.jpg 1600w, /img/a-800.jpg 800w">
			<img srcset="/img/b-1x.jpg 1x, /img/b-2x.jpg 2x">
		</div>
		<img class="thumb" src="/img/thumb.jpg">
	</body></html>`)

	list := StrategyList{
		{Selector: ".hero img", Attr: "src"},
		{Selector: ".gallery img", Attr: "srcset"},
		{Selector: "img.thumb", Attr: "src"},
	}

	assert.Equal(t, []string{"/img/a-1600.jpg", "/img/b-2x.jpg"}, list.All(doc))
}

func TestLargestSrcsetCandidate(t *testing.T) {
	assert.Equal(t, "", largestSrcsetCandidate(""))
	assert.Equal(t, "/only.jpg", largestSrcsetCandidate("/only.jpg"))
	assert.Equal(t, "/big.jpg", largestSrcsetCandidate("/small.jpg 300w, /big.jpg 1200w"))
}
