package adapters

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"furniture-extractor/internal/types"
)

// Canonical specification labels
const (
	SpecWidth      = "width"
	SpecDepth      = "depth"
	SpecHeight     = "height"
	SpecDimensions = "dimensions"
	SpecFinish     = "finish"
	SpecSKU        = "sku"
)

// defaultSpecTables are tried in order when a profile names no specification table
var defaultSpecTables = []string{
	"table.product-specs",
	".product-specifications table",
	".specifications table",
	"#specifications table",
	"table.specs",
	"dl.product-specs",
	".specifications dl",
}

// SpecTable maps canonical specification labels to their text
type SpecTable map[string]string

// ExtractSpecTable reads the specification table or definition list matched by selector.
// Rows of label and value cells are read as pairs. A table whose first row holds only
// header cells takes its labels from that row and its values from the first data row.
// Labels that are not recognized are dropped.
func ExtractSpecTable(doc *goquery.Document, selector string) (SpecTable, error) {
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("specification table not found with selector: %s", selector)
	}

	specs := SpecTable{}
	if goquery.NodeName(table) == "dl" {
		table.Find("dt").Each(func(i int, dt *goquery.Selection) {
			specs.set(dt.Text(), dt.NextFiltered("dd").Text())
		})
	} else {
		specs.readRows(table)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("no recognized specifications in table: %s", selector)
	}
	return specs, nil
}

// FindSpecTable returns the first specification table on the page, trying the
// profile's selector before the common ones
func FindSpecTable(doc *goquery.Document, profile types.VendorProfile) (SpecTable, bool) {
	selectors := defaultSpecTables
	if profile.SpecTable != "" {
		selectors = append([]string{profile.SpecTable}, defaultSpecTables...)
	}
	for _, selector := range selectors {
		if specs, err := ExtractSpecTable(doc, selector); err == nil {
			return specs, true
		}
	}
	return nil, false
}

// Dimensions returns the overall dimensions row, or the width, depth and height rows joined
func (s SpecTable) Dimensions() string {
	if d := s[SpecDimensions]; d != "" {
		return d
	}
	var parts []string
	for _, axis := range []struct{ prefix, label string }{
		{"W", SpecWidth},
		{"D", SpecDepth},
		{"H", SpecHeight},
	} {
		if v := s[axis.label]; v != "" {
			parts = append(parts, axis.prefix+" "+v)
		}
	}
	return strings.Join(parts, " x ")
}

type specRow struct {
	cells  []string
	header bool
}

func (s SpecTable) readRows(table *goquery.Selection) {
	var rows []specRow
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		row := specRow{header: true}
		tr.Find("th, td").Each(func(j int, cell *goquery.Selection) {
			row.cells = append(row.cells, cell.Text())
			if goquery.NodeName(cell) != "th" {
				row.header = false
			}
		})
		if len(row.cells) > 0 {
			rows = append(rows, row)
		}
	})

	if len(rows) > 1 && rows[0].header && !rows[1].header {
		for i, label := range rows[0].cells {
			if i < len(rows[1].cells) {
				s.set(label, rows[1].cells[i])
			}
		}
		return
	}

	for _, row := range rows {
		if len(row.cells) >= 2 {
			s.set(row.cells[0], row.cells[1])
		}
	}
}

// set keeps the first value seen for a label
func (s SpecTable) set(label, value string) {
	key := canonicalSpecLabel(label)
	value = strings.Join(strings.Fields(value), " ")
	if key == "" || value == "" {
		return
	}
	if _, exists := s[key]; !exists {
		s[key] = value
	}
}

func canonicalSpecLabel(label string) string {
	l := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(label), ":"))
	l = strings.TrimSpace(l)

	// seat and arm measurements are not the piece's outer dimensions
	for _, word := range strings.Fields(l) {
		if word == "seat" || word == "arm" || word == "arms" {
			return ""
		}
	}

	switch {
	case strings.Contains(l, "width"), l == "w":
		return SpecWidth
	case strings.Contains(l, "depth"), strings.Contains(l, "length"), l == "d", l == "l":
		return SpecDepth
	case strings.Contains(l, "height"), l == "h":
		return SpecHeight
	case strings.Contains(l, "dimension"), strings.Contains(l, "overall"), l == "size":
		return SpecDimensions
	case strings.Contains(l, "finish"), strings.Contains(l, "color"), strings.Contains(l, "colour"):
		return SpecFinish
	case strings.Contains(l, "sku"), strings.Contains(l, "item number"), strings.Contains(l, "item #"), strings.Contains(l, "model"):
		return SpecSKU
	}
	return ""
}
