package adapters

import "furniture-extractor/internal/types"

// GenericVendorID is the profile used for single-product ingestion on domains the registry does not know
const GenericVendorID = "generic"

const jsonLD = `script[type="application/ld+json"]`

// commonFields are tried after a vendor's own strategies. Most vendor sites expose
// schema.org Product data and OpenGraph tags even when their markup changes.
var commonFields = types.FieldStrategies{
	Name: types.StrategyList{
		{Selector: jsonLD, JSONKey: "name"},
		{Selector: "meta[property='og:title']", Attr: "content"},
		{Selector: "h1[itemprop='name']"},
		{Selector: "h1"},
	},
	Price: types.StrategyList{
		{Selector: jsonLD, JSONKey: "offers.price"},
		{Selector: jsonLD, JSONKey: "offers.lowPrice"},
		{Selector: "meta[property='product:price:amount']", Attr: "content"},
		{Selector: "meta[property='og:price:amount']", Attr: "content"},
		{Selector: "[itemprop='price']", Attr: "content"},
		{Selector: "[itemprop='price']"},
		{Selector: ".price"},
	},
	SKU: types.StrategyList{
		{Selector: jsonLD, JSONKey: "sku"},
		{Selector: jsonLD, JSONKey: "mpn"},
		{Selector: "[itemprop='sku']"},
		{Selector: ".sku"},
	},
	Dimensions: types.StrategyList{
		{Selector: ".product-dimensions"},
		{Selector: ".dimensions"},
		{Selector: "[data-dimensions]", Attr: "data-dimensions"},
	},
	Description: types.StrategyList{
		{Selector: jsonLD, JSONKey: "description"},
		{Selector: "meta[property='og:description']", Attr: "content"},
		{Selector: "meta[name='description']", Attr: "content"},
		{Selector: ".product-description"},
	},
	Finish: types.StrategyList{
		{Selector: jsonLD, JSONKey: "color"},
		{Selector: ".product-finish"},
		{Selector: ".finish"},
		{Selector: ".color"},
	},
	Images: types.StrategyList{
		{Selector: jsonLD, JSONKey: "image"},
		{Selector: "meta[property='og:image']", Attr: "content"},
		{Selector: ".product-gallery img", Attr: "src"},
		{Selector: "img[itemprop='image']", Attr: "src"},
	},
	Availability: types.StrategyList{
		{Selector: jsonLD, JSONKey: "offers.availability"},
		{Selector: "[itemprop='availability']", Attr: "href"},
		{Selector: ".availability"},
		{Selector: ".stock-status"},
	},
}

// builtinProfiles are the vendors known without configuration.
// Field strategies listed here run before commonFields.
var builtinProfiles = []types.VendorProfile{
	{
		ID:           "fourhands",
		Name:         "Four Hands",
		BaseURL:      "https://fourhands.com",
		Domains:      []string{"fourhands.com"},
		ListingPaths: []string{"/collections/seating", "/collections/tables", "/collections/lighting", "/collections/storage"},
		ListingCategories: map[string]string{
			"/collections/seating":  "Seating",
			"/collections/tables":   "Tables",
			"/collections/lighting": "Lighting",
			"/collections/storage":  "Storage",
		},
		Fields: types.FieldStrategies{
			Name:       types.StrategyList{{Selector: "h1.product__title"}, {Selector: ".product-single__title"}},
			Price:      types.StrategyList{{Selector: ".product__price .money"}, {Selector: ".product__price"}},
			SKU:        types.StrategyList{{Selector: ".product__sku-value"}, {Selector: ".product__sku"}},
			Dimensions: types.StrategyList{{Selector: ".product__dimensions"}, {Selector: "[data-spec='dimensions']"}},
			Finish:     types.StrategyList{{Selector: ".product__finish-name"}, {Selector: "[data-spec='finish']"}},
			Images: types.StrategyList{
				{Selector: ".product__media img", Attr: "data-srcset"},
				{Selector: ".product__media img", Attr: "srcset"},
				{Selector: ".product__media img", Attr: "src"},
			},
		},
		Login: &types.LoginForm{
			URL:              "https://fourhands.com/account/login",
			UsernameSelector: "#CustomerEmail",
			PasswordSelector: "#CustomerPassword",
			SubmitSelector:   "form#customer_login button[type='submit']",
			UsernameField:    "customer[email]",
			PasswordField:    "customer[password]",
		},
	},
	{
		ID:                  "bernhardt",
		Name:                "Bernhardt",
		BaseURL:             "https://www.bernhardt.com",
		Domains:             []string{"bernhardt.com"},
		ListingPaths:        []string{"/shop/living-room", "/shop/dining-room", "/shop/bedroom"},
		ProductPathPatterns: []string{"/shop/item/", "/product/"},
		Fields: types.FieldStrategies{
			Name:        types.StrategyList{{Selector: ".product-detail h1"}, {Selector: ".item-name"}},
			SKU:         types.StrategyList{{Selector: ".item-number span"}, {Selector: ".item-number"}},
			Dimensions:  types.StrategyList{{Selector: ".item-dimensions"}, {Selector: "table.specs td.dimensions"}},
			Description: types.StrategyList{{Selector: ".item-description"}},
			Finish:      types.StrategyList{{Selector: ".item-finish"}},
			Images: types.StrategyList{
				{Selector: ".product-images img", Attr: "data-zoom-image"},
				{Selector: ".product-images img", Attr: "src"},
			},
		},
		Login: &types.LoginForm{
			URL:              "https://www.bernhardt.com/account/login",
			UsernameSelector: "input[name='username']",
			PasswordSelector: "input[name='password']",
			SubmitSelector:   "button[type='submit']",
			UsernameField:    "username",
			PasswordField:    "password",
		},
	},
	{
		ID:           "hooker",
		Name:         "Hooker Furniture",
		BaseURL:      "https://www.hookerfurniture.com",
		Domains:      []string{"hookerfurniture.com"},
		ListingPaths: []string{"/living-room", "/dining-room", "/bedroom", "/home-office"},
		ListingCategories: map[string]string{
			"/home-office": "Storage",
		},
		ProductPathPatterns: []string{"/item/", "/product/"},
		Fields: types.FieldStrategies{
			Name:       types.StrategyList{{Selector: "#itemName"}, {Selector: ".item-title h1"}},
			Price:      types.StrategyList{{Selector: "#itemPrice"}, {Selector: ".item-price"}},
			SKU:        types.StrategyList{{Selector: "#itemNumber"}, {Selector: ".item-number"}},
			Dimensions: types.StrategyList{{Selector: "#itemDimensions"}, {Selector: ".item-dimensions"}},
			Images:     types.StrategyList{{Selector: "#itemImages img", Attr: "data-large"}, {Selector: "#itemImages img", Attr: "src"}},
		},
	},
	{
		ID:           "visualcomfort",
		Name:         "Visual Comfort & Co.",
		BaseURL:      "https://www.visualcomfort.com",
		Domains:      []string{"visualcomfort.com", "circalighting.com"},
		ListingPaths: []string{"/ceiling", "/wall", "/table", "/floor"},
		ListingCategories: map[string]string{
			"/ceiling": "Lighting",
			"/wall":    "Lighting",
			"/table":   "Lighting",
			"/floor":   "Lighting",
		},
		ProductPathPatterns: []string{"/product/", "/products/"},
		Fields: types.FieldStrategies{
			Name:       types.StrategyList{{Selector: ".page-title .base"}, {Selector: "h1.page-title"}},
			Price:      types.StrategyList{{Selector: "[data-price-type='finalPrice'] .price"}, {Selector: ".price-box .price"}},
			SKU:        types.StrategyList{{Selector: ".product.attribute.sku .value"}},
			Dimensions: types.StrategyList{{Selector: "#product-attribute-specs-table td[data-th='Dimensions']"}},
			Finish:     types.StrategyList{{Selector: ".swatch-attribute.finish .swatch-attribute-selected-option"}},
			Images:     types.StrategyList{{Selector: ".gallery-placeholder img", Attr: "src"}},
		},
	},
	{
		ID:           "loloi",
		Name:         "Loloi",
		BaseURL:      "https://www.loloirugs.com",
		Domains:      []string{"loloirugs.com"},
		ListingPaths: []string{"/collections/all-rugs", "/collections/pillows"},
		ListingCategories: map[string]string{
			"/collections/all-rugs": "Rugs",
			"/collections/pillows":  "Decor",
		},
		Fields: types.FieldStrategies{
			Name:       types.StrategyList{{Selector: ".product-info__title"}},
			Price:      types.StrategyList{{Selector: ".product-info__price .price-item--regular"}},
			Dimensions: types.StrategyList{{Selector: ".product-info__size-selected"}, {Selector: ".size-chart__active"}},
			Finish:     types.StrategyList{{Selector: ".product-info__color"}},
			Images:     types.StrategyList{{Selector: ".product-media img", Attr: "srcset"}},
		},
	},
	{
		ID:           "uttermost",
		Name:         "Uttermost",
		BaseURL:      "https://uttermost.com",
		Domains:      []string{"uttermost.com"},
		ListingPaths: []string{"/mirrors", "/lighting", "/accessories", "/furniture"},
		ListingCategories: map[string]string{
			"/mirrors":     "Decor",
			"/lighting":    "Lighting",
			"/accessories": "Decor",
		},
		Fields: types.FieldStrategies{
			Name:        types.StrategyList{{Selector: ".product-name h1"}},
			Price:       types.StrategyList{{Selector: ".product-price .amount"}},
			SKU:         types.StrategyList{{Selector: ".product-sku .value"}},
			Dimensions:  types.StrategyList{{Selector: ".product-specs .dimensions"}},
			Description: types.StrategyList{{Selector: ".product-description .rte"}},
			Images:      types.StrategyList{{Selector: ".product-images a", Attr: "href"}},
		},
	},
}

// genericProfile relies on structured data and common markup only
var genericProfile = types.VendorProfile{
	ID:   GenericVendorID,
	Name: "Generic",
}
