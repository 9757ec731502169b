package types

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// First evaluates the strategies in order and returns the first non-empty value
// together with the index of the strategy that produced it. ok is false when
// every strategy was exhausted.
func (l StrategyList) First(doc *goquery.Document) (value string, index int, ok bool) {
	if doc == nil {
		return "", -1, false
	}
	for i, s := range l {
		if values := s.evaluate(doc, true); len(values) > 0 {
			return values[0], i, true
		}
	}
	return "", -1, false
}

// All returns every non-empty value produced by the first strategy that yields anything
func (l StrategyList) All(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}
	for _, s := range l {
		if values := s.evaluate(doc, false); len(values) > 0 {
			return values
		}
	}
	return nil
}

func (s Strategy) evaluate(doc *goquery.Document, firstOnly bool) []string {
	if s.Selector == "" {
		return nil
	}
	var values []string
	doc.Find(s.Selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, v := range s.read(sel) {
			if v = collapseSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return !(firstOnly && len(values) > 0)
	})
	return values
}

func (s Strategy) read(sel *goquery.Selection) []string {
	switch {
	case s.JSONKey != "":
		return jsonLDValues(sel.Text(), s.JSONKey)
	case s.Attr == "":
		return []string{sel.Text()}
	}
	v, exists := sel.Attr(s.Attr)
	if !exists {
		return nil
	}
	if strings.HasSuffix(s.Attr, "srcset") {
		return []string{largestSrcsetCandidate(v)}
	}
	return []string{v}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// largestSrcsetCandidate picks the widest (or highest density) candidate of a srcset attribute
func largestSrcsetCandidate(srcset string) string {
	type candidate struct {
		url  string
		size float64
	}
	var candidates []candidate
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		c := candidate{url: fields[0], size: 1}
		if len(fields) > 1 {
			descriptor := fields[1]
			if n, err := strconv.ParseFloat(strings.TrimRight(descriptor, "wx"), 64); err == nil {
				c.size = n
			}
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].size > candidates[j].size })
	return candidates[0].url
}

// jsonLDValues reads a dotted key path from the Product object inside a JSON-LD script body
func jsonLDValues(body, key string) []string {
	var root any
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &root); err != nil {
		return nil
	}
	product := findProduct(root)
	if product == nil {
		return nil
	}
	var current any = product
	for _, part := range strings.Split(key, ".") {
		current = descend(current, part)
		if current == nil {
			return nil
		}
	}
	return flattenJSON(current)
}

func findProduct(node any) map[string]any {
	switch v := node.(type) {
	case map[string]any:
		if isProductType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findProduct(graph)
		}
		if main, ok := v["mainEntity"]; ok {
			return findProduct(main)
		}
	case []any:
		for _, item := range v {
			if p := findProduct(item); p != nil {
				return p
			}
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product") || strings.EqualFold(v, "ProductGroup")
	case []any:
		for _, item := range v {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

// descend follows one key, taking the first element of arrays such as offers
func descend(node any, key string) any {
	switch v := node.(type) {
	case map[string]any:
		return v[key]
	case []any:
		for _, item := range v {
			if found := descend(item, key); found != nil {
				return found
			}
		}
	}
	return nil
}

func flattenJSON(node any) []string {
	switch v := node.(type) {
	case string:
		return []string{v}
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(v)}
	case map[string]any:
		// ImageObject and similar
		for _, key := range []string{"url", "contentUrl", "@id", "name"} {
			if s, ok := v[key].(string); ok {
				return []string{s}
			}
		}
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, flattenJSON(item)...)
		}
		return out
	}
	return nil
}
