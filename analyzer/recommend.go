package analyzer

import (
	"fmt"
	"math"
	"strings"
)

// Evaluation is everything the recommendation rules look at
type Evaluation struct {
	Input
	MyKeyword         KeywordAnalysis
	CompetitorKeyword KeywordAnalysis
	ContentGaps       ContentGapAnalysis
	MyScores          CategoryScores
	CompetitorScores  CategoryScores
}

type bucket int

const (
	bucketQuickWins bucket = iota
	bucketTechnical
	bucketContent
	bucketSchema
	bucketBacklinks
	bucketSERP
)

type rule struct {
	bucket bucket
	eval   func(e *Evaluation) []Recommendation
}

// rules is evaluated top to bottom. Recommendations keep this order inside
// their bucket and are never re-sorted by priority.
var rules = []rule{
	{bucketQuickWins, keywordInTitle},
	{bucketQuickWins, keywordInH1},
	{bucketQuickWins, onPageScore},
	{bucketContent, wordCount},
	{bucketContent, contentCoverage},
	{bucketContent, contentDepth},
	{bucketContent, topicalCoverage},
	{bucketContent, keywordDensityLow},
	{bucketContent, keywordDensityHigh},
	{bucketSchema, missingSchema},
	{bucketBacklinks, backlinkVolume},
	{bucketBacklinks, referringDomains},
	{bucketBacklinks, toxicBacklinks},
	{bucketSERP, featuredSnippet},
	{bucketSERP, peopleAlsoAsk},
	{bucketSERP, serpPosition},
	{bucketTechnical, performance},
	{bucketTechnical, mobileFriendly},
	{bucketTechnical, technicalSEO},
}

// Recommend evaluates every rule against e and groups the triggered
// recommendations by bucket
func Recommend(e Evaluation) Recommendations {
	out := Recommendations{
		QuickWins: []Recommendation{},
		Technical: []Recommendation{},
		Content:   []Recommendation{},
		Schema:    []Recommendation{},
		Backlinks: []Recommendation{},
		SERP:      []Recommendation{},
	}
	for _, r := range rules {
		recs := r.eval(&e)
		if len(recs) == 0 {
			continue
		}
		switch r.bucket {
		case bucketQuickWins:
			out.QuickWins = append(out.QuickWins, recs...)
		case bucketTechnical:
			out.Technical = append(out.Technical, recs...)
		case bucketContent:
			out.Content = append(out.Content, recs...)
		case bucketSchema:
			out.Schema = append(out.Schema, recs...)
		case bucketBacklinks:
			out.Backlinks = append(out.Backlinks, recs...)
		case bucketSERP:
			out.SERP = append(out.SERP, recs...)
		}
	}
	return out
}

func one(r Recommendation) []Recommendation {
	return []Recommendation{r}
}

// Quick wins

func keywordInTitle(e *Evaluation) []Recommendation {
	if ContainsPhrase(Tokenize(e.MyPage.Title), Tokenize(e.Phrase)) {
		return nil
	}
	return one(Recommendation{
		Category:    "On-Page SEO",
		Priority:    PriorityHigh,
		Impact:      "High",
		Difficulty:  "Low",
		Title:       "Add target keyword to meta title",
		Description: fmt.Sprintf("Your meta title %q doesn't contain the keyword %q. Consider updating to include it naturally.", e.MyPage.Title, e.Phrase),
		Actions: []string{
			"Update meta title to include the target keyword",
			"Place the keyword near the beginning of the title",
			"Keep the title between 30 and 60 characters",
		},
	})
}

func keywordInH1(e *Evaluation) []Recommendation {
	if ContainsPhrase(Tokenize(e.MyPage.H1), Tokenize(e.Phrase)) {
		return nil
	}
	return one(Recommendation{
		Category:    "On-Page SEO",
		Priority:    PriorityHigh,
		Impact:      "High",
		Difficulty:  "Low",
		Title:       "Add target keyword to H1 tag",
		Description: fmt.Sprintf("Your H1 %q doesn't contain the keyword %q.", e.MyPage.H1, e.Phrase),
		Actions: []string{
			"Update H1 to include the target keyword",
			"Use a single H1 per page",
			"Keep the H1 consistent with the meta title",
		},
	})
}

func onPageScore(e *Evaluation) []Recommendation {
	mine, ok := e.MyScores[CategoryOnPage]
	if !ok {
		return nil
	}
	theirs, ok := e.CompetitorScores[CategoryOnPage]
	if !ok || mine >= theirs {
		return nil
	}
	return one(Recommendation{
		Category:    "On-Page SEO",
		Priority:    PriorityHigh,
		Impact:      "High",
		Difficulty:  "Medium",
		Title:       "Improve On-Page SEO Score",
		Description: fmt.Sprintf("Your on-page score (%d) is lower than competitor (%d)", mine, theirs),
		Actions: []string{
			"Optimize meta tags",
			"Improve heading structure",
			"Tighten content structure around the target keyword",
		},
	})
}

// Content

func wordCount(e *Evaluation) []Recommendation {
	mine := e.ContentGaps.ContentDepth.MyPage.WordCount
	theirs := e.ContentGaps.ContentDepth.CompetitorPage.WordCount
	if float64(mine) >= float64(theirs)*0.7 {
		return nil
	}
	missing := max(0, int(math.Round(float64(theirs)*0.8))-mine)
	return one(Recommendation{
		Category:    "Content",
		Priority:    PriorityMedium,
		Impact:      "High",
		Difficulty:  "Medium",
		Title:       "Expand content length",
		Description: fmt.Sprintf("Your content is %d words vs competitor's %d. Consider expanding to match or exceed.", mine, theirs),
		Actions: []string{
			fmt.Sprintf("Add %d more words of relevant content", missing),
			"Answer the questions searchers ask about the topic",
			"Add examples, data and supporting detail",
		},
	})
}

func contentCoverage(e *Evaluation) []Recommendation {
	gaps := e.ContentGaps
	if len(gaps.CompetitorUniqueTerms) <= len(gaps.MyUniqueTerms) {
		return nil
	}
	topics := gaps.CompetitorUniqueTerms[:min(5, len(gaps.CompetitorUniqueTerms))]
	return one(Recommendation{
		Category:    "Content",
		Priority:    PriorityHighLower,
		Impact:      "High",
		Difficulty:  "Medium",
		Title:       "Expand Content Coverage",
		Description: fmt.Sprintf("Competitor covers %d unique topics you don't. Consider adding these topics.", len(gaps.CompetitorUniqueTerms)),
		Actions: []string{
			"Add sections about: " + strings.Join(topics, ", "),
			"Research related subtopics and questions",
			"Create comprehensive guides instead of overview pages",
			"Add supporting data, statistics, and examples",
		},
	})
}

func contentDepth(e *Evaluation) []Recommendation {
	depth := e.ContentGaps.ContentDepth
	if depth.MyPage.TermDiversity >= depth.CompetitorPage.TermDiversity*0.8 {
		return nil
	}
	return one(Recommendation{
		Category:    "Content",
		Priority:    PriorityMediumLower,
		Impact:      "Medium",
		Difficulty:  "Medium",
		Title:       "Improve Content Depth",
		Description: fmt.Sprintf("Your content has lower topical diversity (%.1f%%) vs competitor (%.1f%%).", depth.MyPage.TermDiversity*100, depth.CompetitorPage.TermDiversity*100),
		Actions: []string{
			"Add more detailed explanations",
			"Include multiple perspectives on the topic",
			"Add supporting examples and case studies",
			"Cover related concepts and terminology",
		},
	})
}

func topicalCoverage(e *Evaluation) []Recommendation {
	gaps := e.ContentGaps
	// Nothing to cover when the competitor has no vocabulary at all
	if gaps.ContentDepth.CompetitorPage.UniqueTerms == 0 && len(gaps.CommonTerms) == 0 {
		return nil
	}
	if gaps.TopicalCoverage.MyCoverage >= 0.7 {
		return nil
	}
	return one(Recommendation{
		Category:    "Content",
		Priority:    PriorityMediumLower,
		Impact:      "Medium",
		Difficulty:  "Medium",
		Title:       "Increase Topical Coverage",
		Description: fmt.Sprintf("You're only covering %.1f%% of topics your competitor covers.", gaps.TopicalCoverage.MyCoverage*100),
		Actions: []string{
			"Research what topics competitors are covering",
			"Add sections for related keywords",
			"Create topic clusters around main keywords",
		},
	})
}

func keywordDensityLow(e *Evaluation) []Recommendation {
	if e.ContentGaps.ContentDepth.MyPage.WordCount == 0 || len(Tokenize(e.Phrase)) == 0 {
		return nil
	}
	if e.MyKeyword.Density >= 0.5 {
		return nil
	}
	return one(Recommendation{
		Category:    "Content",
		Priority:    PriorityMedium,
		Impact:      "Medium",
		Difficulty:  "Low",
		Title:       "Increase keyword density",
		Description: fmt.Sprintf("Current density is %.2f%%. Consider adding the keyword more naturally.", e.MyKeyword.Density),
		Actions: []string{
			"Use the keyword in the opening paragraph",
			"Use the keyword in at least one H2",
			"Mention the keyword again in the conclusion",
		},
	})
}

func keywordDensityHigh(e *Evaluation) []Recommendation {
	if e.MyKeyword.Density <= 3 {
		return nil
	}
	return one(Recommendation{
		Category:    "Content",
		Priority:    PriorityMedium,
		Impact:      "Medium",
		Difficulty:  "Low",
		Title:       "Reduce keyword stuffing",
		Description: fmt.Sprintf("Current density is %.2f%%. This may be seen as keyword stuffing.", e.MyKeyword.Density),
		Actions: []string{
			"Replace repeated keyword mentions with natural variations",
			"Remove sentences that exist only to repeat the keyword",
			"Aim for a density between 0.5% and 2.5%",
		},
	})
}

// Schema

func missingSchema(e *Evaluation) []Recommendation {
	mine := make(map[string]struct{}, len(e.MyPage.Schema))
	for _, s := range e.MyPage.Schema {
		mine[s.Type] = struct{}{}
	}

	var recs []Recommendation
	seen := make(map[string]struct{}, len(e.CompetitorPage.Schema))
	for _, s := range e.CompetitorPage.Schema {
		if _, ok := seen[s.Type]; ok {
			continue
		}
		seen[s.Type] = struct{}{}
		if _, ok := mine[s.Type]; ok {
			continue
		}
		recs = append(recs, Recommendation{
			Category:    "Schema Markup",
			Priority:    PriorityMedium,
			Impact:      "Medium",
			Difficulty:  "Medium",
			Title:       fmt.Sprintf("Add %s schema markup", s.Type),
			Description: fmt.Sprintf("Competitor has %s schema which you don't. This helps search engines understand your content better.", s.Type),
			Actions: []string{
				fmt.Sprintf("Add %s structured data to your page", s.Type),
				"Use JSON-LD format",
				"Validate the markup with a rich results test",
			},
		})
	}
	return recs
}

// Backlinks

func backlinkVolume(e *Evaluation) []Recommendation {
	mine, theirs := e.MyBacklinks.TotalBacklinks, e.CompetitorBacklinks.TotalBacklinks
	if float64(mine) >= float64(theirs)*0.5 {
		return nil
	}
	return one(Recommendation{
		Category:    "Backlinks",
		Priority:    PriorityHighLower,
		Impact:      "High",
		Difficulty:  "High",
		Title:       "Build More Quality Backlinks",
		Description: fmt.Sprintf("You have %d backlinks vs competitor's %d. Focus on quality over quantity.", mine, theirs),
		Actions: []string{
			"Create linkable assets (infographics, tools, research)",
			"Reach out to industry blogs and publications",
			"Guest post on authoritative websites",
			"Fix broken links pointing to your site",
		},
	})
}

func referringDomains(e *Evaluation) []Recommendation {
	mine, theirs := e.MyBacklinks.ReferringDomains, e.CompetitorBacklinks.ReferringDomains
	if float64(mine) >= float64(theirs)*0.7 {
		return nil
	}
	return one(Recommendation{
		Category:    "Backlinks",
		Priority:    PriorityMediumLower,
		Impact:      "Medium",
		Difficulty:  "High",
		Title:       "Increase Referring Domains",
		Description: fmt.Sprintf("You have %d referring domains vs competitor's %d.", mine, theirs),
		Actions: []string{
			"Diversify your backlink sources",
			"Target different types of websites",
			"Build relationships with multiple domains",
			"Create shareable content that naturally attracts links",
		},
	})
}

func toxicBacklinks(e *Evaluation) []Recommendation {
	if e.MyBacklinks.ToxicBacklinks <= 10 {
		return nil
	}
	return one(Recommendation{
		Category:    "Backlinks",
		Priority:    PriorityMediumLower,
		Impact:      "Medium",
		Difficulty:  "Medium",
		Title:       "Clean Up Toxic Backlinks",
		Description: fmt.Sprintf("You have %d potentially toxic backlinks that could harm your rankings.", e.MyBacklinks.ToxicBacklinks),
		Actions: []string{
			"Use Google Disavow Tool for toxic links",
			"Audit your backlink profile regularly",
			"Contact webmasters to remove bad links",
			"Focus on building high-quality links instead",
		},
	})
}

// SERP features

func featuredSnippet(e *Evaluation) []Recommendation {
	if e.MySERP.HasFeaturedSnippet || !e.CompetitorSERP.HasFeaturedSnippet {
		return nil
	}
	return one(Recommendation{
		Category:    "SERP Features",
		Priority:    PriorityHighLower,
		Impact:      "High",
		Difficulty:  "Medium",
		Title:       "Target Featured Snippets",
		Description: fmt.Sprintf("Competitor appears in featured snippets for %q. Create content that directly answers common questions.", e.Phrase),
		Actions: []string{
			"Research questions users ask about this topic",
			"Create concise, direct answers (40-60 words)",
			"Use structured formatting (lists, tables, steps)",
			"Include the question in your H1 or H2 tags",
		},
	})
}

func peopleAlsoAsk(e *Evaluation) []Recommendation {
	if e.MySERP.HasPeopleAlsoAsk || !e.CompetitorSERP.HasPeopleAlsoAsk {
		return nil
	}
	return one(Recommendation{
		Category:    "SERP Features",
		Priority:    PriorityMediumLower,
		Impact:      "Medium",
		Difficulty:  "Low",
		Title:       "Add FAQ Section",
		Description: "People Also Ask sections can drive significant traffic. Create comprehensive FAQs.",
		Actions: []string{
			"Research related questions using Google autocomplete",
			"Answer 5-10 related questions",
			"Use FAQ schema markup",
			"Update content regularly based on new questions",
		},
	})
}

func serpPosition(e *Evaluation) []Recommendation {
	mine, theirs := e.MySERP.EstimatedPosition, e.CompetitorSERP.EstimatedPosition
	if mine <= theirs {
		return nil
	}
	return one(Recommendation{
		Category:    "SERP Features",
		Priority:    PriorityHighLower,
		Impact:      "High",
		Difficulty:  "High",
		Title:       "Improve Search Rankings",
		Description: fmt.Sprintf("You're estimated at position %d vs competitor at %d. Focus on ranking factors.", mine, theirs),
		Actions: []string{
			"Improve page load speed",
			"Enhance content quality and depth",
			"Build high-quality backlinks",
			"Optimize for mobile experience",
		},
	})
}

// Technical

func performance(e *Evaluation) []Recommendation {
	score := e.MyPage.Technical.Performance
	if score >= 70 {
		return nil
	}
	return one(Recommendation{
		Category:    "Technical SEO",
		Priority:    PriorityHighLower,
		Impact:      "High",
		Difficulty:  "Medium",
		Title:       "Improve page load speed",
		Description: fmt.Sprintf("Current performance score: %d. Target: >90", score),
		Actions: []string{
			"Optimize images (compress, use WebP format)",
			"Minify CSS and JavaScript",
			"Enable browser caching",
			"Use CDN for static assets",
		},
	})
}

func mobileFriendly(e *Evaluation) []Recommendation {
	if e.MyPage.Technical.MobileFriendly {
		return nil
	}
	return one(Recommendation{
		Category:    "Technical SEO",
		Priority:    PriorityHighLower,
		Impact:      "High",
		Difficulty:  "Medium",
		Title:       "Make page mobile-friendly",
		Description: "Page is not optimized for mobile devices",
		Actions: []string{
			"Add proper viewport meta tag",
			"Use responsive design",
			"Test on mobile devices",
		},
	})
}

func technicalSEO(e *Evaluation) []Recommendation {
	score := e.MyPage.Technical.SEO
	if score >= 80 {
		return nil
	}
	return one(Recommendation{
		Category:    "Technical SEO",
		Priority:    PriorityMediumLower,
		Impact:      "Medium",
		Difficulty:  "Low",
		Title:       "Improve technical SEO",
		Description: fmt.Sprintf("Current SEO score: %d", score),
		Actions: []string{
			"Add meta description if missing",
			"Add alt text to all images",
			"Use proper heading structure",
			"Add structured data",
		},
	})
}
