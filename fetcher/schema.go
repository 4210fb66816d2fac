package fetcher

import (
	"encoding/json"
	"log"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/competitor-audit/analyzer"
)

const (
	contextMicrodata = "Microdata"
	contextRDFa      = "RDFa"
	unknownType      = "Unknown"
)

// valuableSchemaTypes earn the schema score bonus
var valuableSchemaTypes = map[string]bool{
	"Article":       true,
	"FAQPage":       true,
	"HowTo":         true,
	"Product":       true,
	"Organization":  true,
	"LocalBusiness": true,
	"Event":         true,
	"Recipe":        true,
}

// ExtractSchema collects JSON-LD, microdata and RDFa entries in that order
func ExtractSchema(doc *goquery.Document) []analyzer.SchemaEntry {
	entries := []analyzer.SchemaEntry{}

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			log.Printf("Skipping invalid JSON-LD block: %v", err)
			return
		}
		entries = appendJSONLD(entries, data, "")
	})

	doc.Find("[itemtype]").Each(func(_ int, s *goquery.Selection) {
		var props []string
		s.Find("[itemprop]").Each(func(_ int, p *goquery.Selection) {
			name := strings.TrimSpace(p.AttrOr("itemprop", ""))
			value := strings.TrimSpace(p.AttrOr("content", ""))
			if value == "" {
				value = strings.TrimSpace(p.Text())
			}
			if name != "" && value != "" && !slices.Contains(props, name) {
				props = append(props, name)
			}
		})
		if len(props) == 0 {
			return
		}
		entries = append(entries, analyzer.SchemaEntry{
			Type:       typeFromURL(s.AttrOr("itemtype", "")),
			Context:    contextMicrodata,
			Properties: props,
		})
	})

	doc.Find("[typeof]").Each(func(_ int, s *goquery.Selection) {
		typeOf := strings.TrimSpace(s.AttrOr("typeof", ""))
		if typeOf == "" {
			return
		}
		entries = append(entries, analyzer.SchemaEntry{
			Type:       typeFromURL(typeOf),
			Context:    contextRDFa,
			Properties: []string{},
		})
	})

	return entries
}

// appendJSONLD walks a decoded JSON-LD value. Every object carrying @type or
// @context becomes an entry, and nested objects (including @graph members)
// are visited with the nearest enclosing @context.
func appendJSONLD(entries []analyzer.SchemaEntry, data any, context string) []analyzer.SchemaEntry {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			entries = appendJSONLD(entries, item, context)
		}
	case map[string]any:
		if c, ok := v["@context"].(string); ok {
			context = c
		}
		_, hasType := v["@type"]
		_, hasContext := v["@context"]
		if hasType || hasContext {
			props := []string{}
			for key := range v {
				if !strings.HasPrefix(key, "@") {
					props = append(props, key)
				}
			}
			slices.Sort(props)
			entries = append(entries, analyzer.SchemaEntry{
				Type:       jsonLDType(v["@type"]),
				Context:    context,
				Properties: props,
			})
		}

		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			switch v[key].(type) {
			case map[string]any, []any:
				entries = appendJSONLD(entries, v[key], context)
			}
		}
	}
	return entries
}

func jsonLDType(t any) string {
	switch v := t.(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return unknownType
}

// typeFromURL reduces a vocabulary URL such as https://schema.org/Product to
// its type name
func typeFromURL(url string) string {
	url = strings.TrimSpace(url)
	if _, after, found := strings.Cut(url, "schema.org/"); found {
		if after == "" {
			return unknownType
		}
		return after
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		url = url[i+1:]
	}
	if url == "" {
		return unknownType
	}
	return url
}

// SchemaScore grades a page's structured data: 30 for having any, 40 more for
// a valuable type, then 20 and 10 for more than one and more than three entries
func SchemaScore(entries []analyzer.SchemaEntry) int {
	if len(entries) == 0 {
		return 0
	}

	score := 30
	if slices.ContainsFunc(entries, func(e analyzer.SchemaEntry) bool { return valuableSchemaTypes[e.Type] }) {
		score += 40
	}
	if len(entries) > 1 {
		score += 20
	}
	if len(entries) > 3 {
		score += 10
	}
	return min(score, 100)
}
