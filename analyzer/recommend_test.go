package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhrase = "seo tools"

// body50 is a 50-token body with one phrase match (2% density)
var body50 = "seo tools help marketers rank pages " + filler(44)

// healthyInput returns a pair of pages that trigger no recommendation at all
func healthyInput() Input {
	page := func(url string) PageDocument {
		return PageDocument{
			URL:         url,
			Title:       "Best SEO Tools Reviewed",
			Description: "Honest reviews of seo tools",
			H1:          "SEO tools that work",
			H2:          []string{"Why seo tools matter"},
			Body:        body50,
			Schema: []SchemaEntry{
				{Type: "Article", Context: "https://schema.org"},
			},
			Technical: Technical{Score: 90, Performance: 92, SEO: 95, MobileFriendly: true},
			Scores: CategoryScores{
				CategoryOnPage:    85,
				CategoryContent:   80,
				CategoryTechnical: 90,
				CategorySchema:    70,
			},
		}
	}

	return Input{
		MyPage:              page("https://example.com/my-page"),
		CompetitorPage:      page("https://competitor.com/their-page"),
		Phrase:              testPhrase,
		MyBacklinks:         BacklinkMetrics{TotalBacklinks: 500, ReferringDomains: 100, ToxicBacklinks: 2},
		CompetitorBacklinks: BacklinkMetrics{TotalBacklinks: 600, ReferringDomains: 110, ToxicBacklinks: 5},
		MySERP:              SERPFeatures{EstimatedPosition: 3, Competition: "Medium"},
		CompetitorSERP:      SERPFeatures{EstimatedPosition: 5, Competition: "Medium"},
	}
}

func evaluate(in Input) Recommendations {
	return Compare(in).Recommendations
}

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestRecommendHealthyPagesProduceNothing(t *testing.T) {
	recs := evaluate(healthyInput())

	assert.Zero(t, recs.Total(), "unexpected recommendations: %+v", recs)
	assert.NotNil(t, recs.QuickWins)
	assert.NotNil(t, recs.Technical)
	assert.NotNil(t, recs.Content)
	assert.NotNil(t, recs.Schema)
	assert.NotNil(t, recs.Backlinks)
	assert.NotNil(t, recs.SERP)
}

func TestRecommendQuickWins(t *testing.T) {
	in := healthyInput()
	in.MyPage.Title = "Marketing software reviews"
	in.MyPage.H1 = "Tools for SEO"
	in.MyPage.Scores[CategoryOnPage] = 60

	recs := evaluate(in)

	require.Len(t, recs.QuickWins, 3)
	assert.Equal(t, []string{
		"Add target keyword to meta title",
		"Add target keyword to H1 tag",
		"Improve On-Page SEO Score",
	}, titles(recs.QuickWins))
	for _, r := range recs.QuickWins {
		assert.Equal(t, PriorityHigh, r.Priority)
		assert.Equal(t, "On-Page SEO", r.Category)
		assert.GreaterOrEqual(t, len(r.Actions), 3)
		assert.LessOrEqual(t, len(r.Actions), 4)
	}
	assert.Contains(t, recs.QuickWins[0].Description, `"Marketing software reviews"`)
	assert.Contains(t, recs.QuickWins[2].Description, "(60)")
}

func TestRecommendTitleMatchIsTokenBased(t *testing.T) {
	in := healthyInput()
	in.MyPage.Title = "SEO-Tools | Example"

	assert.Empty(t, evaluate(in).QuickWins)
}

func TestRecommendWordCount(t *testing.T) {
	in := healthyInput()
	in.CompetitorPage.Body = body50 + " " + filler(50) // 100 tokens vs my 50

	recs := evaluate(in)

	require.NotEmpty(t, recs.Content)
	first := recs.Content[0]
	assert.Equal(t, "Expand content length", first.Title)
	assert.Equal(t, PriorityMedium, first.Priority)
	assert.Contains(t, first.Description, "50 words vs competitor's 100")
	assert.Equal(t, "Add 30 more words of relevant content", first.Actions[0])
}

func TestRecommendWordCountThreshold(t *testing.T) {
	in := healthyInput()
	in.CompetitorPage.Body = body50 + " " + filler(21) // 50 >= 0.7 * 71

	for _, title := range titles(evaluate(in).Content) {
		assert.NotEqual(t, "Expand content length", title)
	}
}

func TestRecommendContentGaps(t *testing.T) {
	in := healthyInput()
	in.MyPage.Body = "seo tools compared " + filler(40)
	in.CompetitorPage.Body = "seo tools compared with pricing features integrations reporting audits " + filler(40)

	recs := evaluate(in)

	got := titles(recs.Content)
	assert.Contains(t, got, "Expand Content Coverage")
	assert.Contains(t, got, "Improve Content Depth")
	assert.Contains(t, got, "Increase Topical Coverage")

	for _, r := range recs.Content {
		if r.Title == "Expand Content Coverage" {
			assert.Equal(t, "Add sections about: pricing, features, integrations, reporting, audits", r.Actions[0])
			assert.Equal(t, PriorityHighLower, r.Priority)
		}
	}
}

func TestRecommendKeywordDensity(t *testing.T) {
	t.Run("too low", func(t *testing.T) {
		in := healthyInput()
		in.MyPage.Body = "seo tools " + filler(298)
		in.CompetitorPage.Body = in.MyPage.Body

		assert.Equal(t, []string{"Increase keyword density"}, titles(evaluate(in).Content))
	})

	t.Run("stuffed", func(t *testing.T) {
		in := healthyInput()
		in.MyPage.Body = "seo tools seo tools " + filler(16)
		in.CompetitorPage.Body = in.MyPage.Body

		recs := evaluate(in).Content
		require.Len(t, recs, 1)
		assert.Equal(t, "Reduce keyword stuffing", recs[0].Title)
		assert.Contains(t, recs[0].Description, "10.00%")
	})
}

func TestRecommendMissingSchema(t *testing.T) {
	in := healthyInput()
	in.MyPage.Schema = []SchemaEntry{{Type: "Article"}, {Type: "Organization"}}
	in.CompetitorPage.Schema = []SchemaEntry{
		{Type: "HowTo"},
		{Type: "Article"},
		{Type: "FAQPage"},
		{Type: "HowTo"},
	}

	recs := evaluate(in)

	assert.Equal(t, []string{"Add HowTo schema markup", "Add FAQPage schema markup"}, titles(recs.Schema))
	for _, r := range recs.Schema {
		assert.Equal(t, "Schema Markup", r.Category)
		assert.Equal(t, PriorityMedium, r.Priority)
	}
}

func TestRecommendBacklinks(t *testing.T) {
	in := healthyInput()
	in.MyBacklinks = BacklinkMetrics{TotalBacklinks: 100, ReferringDomains: 20, ToxicBacklinks: 11}
	in.CompetitorBacklinks = BacklinkMetrics{TotalBacklinks: 201, ReferringDomains: 30}

	recs := evaluate(in)

	assert.Equal(t, []string{
		"Build More Quality Backlinks",
		"Increase Referring Domains",
		"Clean Up Toxic Backlinks",
	}, titles(recs.Backlinks))
	assert.Equal(t, PriorityHighLower, recs.Backlinks[0].Priority)
	assert.Equal(t, PriorityMediumLower, recs.Backlinks[1].Priority)
	assert.Equal(t, PriorityMediumLower, recs.Backlinks[2].Priority)
	assert.Contains(t, recs.Backlinks[0].Description, "100 backlinks vs competitor's 201")
}

func TestRecommendBacklinkThresholds(t *testing.T) {
	in := healthyInput()
	in.MyBacklinks = BacklinkMetrics{TotalBacklinks: 100, ReferringDomains: 21, ToxicBacklinks: 10}
	in.CompetitorBacklinks = BacklinkMetrics{TotalBacklinks: 200, ReferringDomains: 30}

	assert.Empty(t, evaluate(in).Backlinks)
}

func TestRecommendFailedLookupsDoNotPanic(t *testing.T) {
	in := healthyInput()
	in.MyBacklinks = DefaultBacklinks()
	in.CompetitorBacklinks = DefaultBacklinks()
	in.MySERP = DefaultSERPFeatures()
	in.CompetitorSERP = DefaultSERPFeatures()

	recs := evaluate(in)

	assert.Empty(t, recs.Backlinks)
	// Both positions default to 0, so neither page ranks lower
	assert.Empty(t, recs.SERP)
}

func TestRecommendSERPCompetitorLookupFailed(t *testing.T) {
	in := healthyInput()
	in.MySERP = SERPFeatures{EstimatedPosition: 7}
	in.CompetitorSERP = DefaultSERPFeatures()

	recs := evaluate(in)

	require.Equal(t, []string{"Improve Search Rankings"}, titles(recs.SERP))
	assert.Equal(t, PriorityHighLower, recs.SERP[0].Priority)
	assert.Contains(t, recs.SERP[0].Description, "position 7 vs competitor at 0")
}

func TestRecommendSERPMyLookupFailed(t *testing.T) {
	in := healthyInput()
	in.MySERP = DefaultSERPFeatures()
	in.CompetitorSERP = SERPFeatures{EstimatedPosition: 4}

	assert.Empty(t, evaluate(in).SERP)
}

func TestRecommendSERP(t *testing.T) {
	in := healthyInput()
	in.MySERP = SERPFeatures{EstimatedPosition: 9}
	in.CompetitorSERP = SERPFeatures{HasFeaturedSnippet: true, HasPeopleAlsoAsk: true, EstimatedPosition: 2}

	recs := evaluate(in)

	assert.Equal(t, []string{
		"Target Featured Snippets",
		"Add FAQ Section",
		"Improve Search Rankings",
	}, titles(recs.SERP))
	assert.Equal(t, []Priority{PriorityHighLower, PriorityMediumLower, PriorityHighLower},
		[]Priority{recs.SERP[0].Priority, recs.SERP[1].Priority, recs.SERP[2].Priority})
	assert.Contains(t, recs.SERP[2].Description, "position 9 vs competitor at 2")
}

func TestRecommendSERPWhenIAlreadyHaveFeatures(t *testing.T) {
	in := healthyInput()
	in.MySERP = SERPFeatures{HasFeaturedSnippet: true, HasPeopleAlsoAsk: true, EstimatedPosition: 2}
	in.CompetitorSERP = SERPFeatures{HasFeaturedSnippet: true, HasPeopleAlsoAsk: true, EstimatedPosition: 2}

	assert.Empty(t, evaluate(in).SERP)
}

func TestRecommendTechnical(t *testing.T) {
	in := healthyInput()
	in.MyPage.Technical = Technical{Performance: 69, SEO: 79, MobileFriendly: false}

	recs := evaluate(in)

	assert.Equal(t, []string{
		"Improve page load speed",
		"Make page mobile-friendly",
		"Improve technical SEO",
	}, titles(recs.Technical))
	assert.Equal(t, "Current performance score: 69. Target: >90", recs.Technical[0].Description)
	assert.Equal(t, "Current SEO score: 79", recs.Technical[2].Description)
}

func TestRecommendTechnicalThresholds(t *testing.T) {
	in := healthyInput()
	in.MyPage.Technical = Technical{Performance: 70, SEO: 80, MobileFriendly: true}

	assert.Empty(t, evaluate(in).Technical)
}
