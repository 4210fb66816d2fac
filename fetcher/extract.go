package fetcher

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/competitor-audit/analyzer"
)

// pageFacts are the raw observations the sub-scores are computed from
type pageFacts struct {
	title         string
	description   string
	keywords      string
	robots        string
	viewport      string
	h1Count       int
	h2Count       int
	h3Count       int
	wordCount     int
	totalImages   int
	imagesWithAlt int
}

// Extract turns a parsed HTML document into a PageDocument. pageSize and
// loadTime describe the HTTP response the document came from.
func Extract(doc *goquery.Document, url string, pageSize int, loadTime time.Duration) analyzer.PageDocument {
	facts := pageFacts{
		title:       strings.TrimSpace(doc.Find("title").First().Text()),
		description: metaContent(doc, "description"),
		keywords:    metaContent(doc, "keywords"),
		robots:      metaContent(doc, "robots"),
		viewport:    metaContent(doc, "viewport"),
		h1Count:     doc.Find("h1").Length(),
		h2Count:     doc.Find("h2").Length(),
		h3Count:     doc.Find("h3").Length(),
	}

	page := analyzer.PageDocument{
		URL:         url,
		Title:       facts.title,
		Description: facts.description,
		H1:          collapseSpace(doc.Find("h1").First().Text()),
		H2:          []string{},
		Body:        bodyText(doc),
		Schema:      ExtractSchema(doc),
	}

	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		page.H2 = append(page.H2, collapseSpace(s.Text()))
	})

	images := doc.Find("img")
	facts.totalImages = images.Length()
	images.Each(func(_ int, s *goquery.Selection) {
		if _, exists := s.Attr("alt"); exists {
			facts.imagesWithAlt++
		}
	})
	facts.wordCount = len(analyzer.Tokenize(page.Body))

	page.Technical = technical(facts, pageSize, loadTime)
	page.Scores = analyzer.CategoryScores{
		analyzer.CategoryOnPage:    onPageScore(facts),
		analyzer.CategoryContent:   contentScore(facts),
		analyzer.CategoryTechnical: page.Technical.Score,
		analyzer.CategorySchema:    SchemaScore(page.Schema),
	}

	return page
}

func metaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find("meta[name='" + name + "']").First().Attr("content")
	return strings.TrimSpace(content)
}

// bodyText returns the visible text of <body> with whitespace collapsed
func bodyText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return collapseSpace(body.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func titleScore(f pageFacts) int {
	length := utf8.RuneCountInString(f.title)
	switch {
	case length == 0:
		return 0
	case length >= 30 && length <= 60:
		return 100
	case length < 30:
		return 50
	default:
		return 70
	}
}

func metaScore(f pageFacts) int {
	score := 0
	if n := utf8.RuneCountInString(f.description); n > 0 {
		if n >= 120 && n <= 160 {
			score += 40
		} else {
			score += 20
		}
	}
	if f.keywords != "" {
		score += 20
	}
	if f.viewport != "" {
		score += 20
	}
	if f.robots != "" {
		score += 20
	}
	return score
}

func headersScore(f pageFacts) int {
	score := 0
	if f.h1Count == 1 {
		score += 40
	} else if f.h1Count > 1 {
		score += 20
	}
	if f.h2Count > 0 {
		score += 30
	}
	if f.h3Count > 0 {
		score += 30
	}
	return score
}

// onPageScore is the mean of the title, meta and headers sub-scores
func onPageScore(f pageFacts) int {
	return int(math.Round(float64(titleScore(f)+metaScore(f)+headersScore(f)) / 3))
}

func contentScore(f pageFacts) int {
	score := 0
	if f.wordCount >= 300 {
		score += 30
	}
	if f.totalImages > 0 {
		score += 20
		if f.imagesWithAlt == f.totalImages {
			score += 30
		} else if f.imagesWithAlt > 0 {
			score += 20
		}
	}
	return score
}

func mobileFriendly(viewport string) bool {
	return strings.Contains(strings.ToLower(viewport), "width=device-width")
}

// performanceScore grades the load time and then subtracts page weight penalties
func performanceScore(pageSize int, loadTime time.Duration) int {
	var score int
	switch ms := loadTime.Milliseconds(); {
	case ms <= 2000:
		score = 100
	case ms <= 3000:
		score = 80
	case ms <= 5000:
		score = 60
	default:
		score = 40
	}

	switch pageSizeKB := float64(pageSize) / 1024.0; {
	case pageSizeKB > 5120:
		score -= 40
	case pageSizeKB > 2048:
		score -= 30
	case pageSizeKB > 1024:
		score -= 20
	case pageSizeKB > 500:
		score -= 10
	}

	return max(score, 0)
}

// seoScore awards 25 points each for a title, a description, an H1 and images
// that all carry alt text
func seoScore(f pageFacts) int {
	score := 0
	if f.title != "" {
		score += 25
	}
	if f.description != "" {
		score += 25
	}
	if f.h1Count > 0 {
		score += 25
	}
	if f.totalImages > 0 && f.imagesWithAlt == f.totalImages {
		score += 25
	}
	return score
}

func technical(f pageFacts, pageSize int, loadTime time.Duration) analyzer.Technical {
	t := analyzer.Technical{
		Performance:    performanceScore(pageSize, loadTime),
		SEO:            seoScore(f),
		MobileFriendly: mobileFriendly(f.viewport),
		LoadTimeMs:     int(loadTime.Milliseconds()),
		PageSizeBytes:  pageSize,
	}

	mobile := 0.0
	if t.MobileFriendly {
		mobile = 30
	}
	t.Score = int(math.Round(float64(t.Performance)*0.4 + float64(t.SEO)*0.3 + mobile))
	return t
}
