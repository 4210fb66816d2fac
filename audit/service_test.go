package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/competitor-audit/analyzer"
	"github.com/seo-optimizer/competitor-audit/providers"
	"github.com/seo-optimizer/competitor-audit/stats"
)

const (
	myURL         = "https://mine.test/guide"
	competitorURL = "https://rival.test/guide"
)

type fakePages map[string]analyzer.PageDocument

func (f fakePages) Fetch(ctx context.Context, url string) (analyzer.PageDocument, error) {
	if err := ctx.Err(); err != nil {
		return analyzer.PageDocument{}, err
	}
	page, ok := f[url]
	if !ok {
		return analyzer.PageDocument{}, errors.New("connection refused")
	}
	return page, nil
}

// slowPages blocks until the context ends
type slowPages struct{}

func (slowPages) Fetch(ctx context.Context, _ string) (analyzer.PageDocument, error) {
	<-ctx.Done()
	return analyzer.PageDocument{}, ctx.Err()
}

func testPages() fakePages {
	return fakePages{
		myURL: {
			URL:   myURL,
			Title: "Marketing software reviews",
			H1:    "SEO tools guide",
			Body:  "seo tools " + strings.Repeat("guide ", 58),
			Scores: analyzer.CategoryScores{
				analyzer.CategoryOnPage: 60,
			},
		},
		competitorURL: {
			URL:    competitorURL,
			Title:  "Best SEO Tools",
			H1:     "SEO tools guide",
			Body:   "seo tools " + strings.Repeat("guide ", 98),
			Schema: []analyzer.SchemaEntry{{Type: "FAQPage"}},
			Scores: analyzer.CategoryScores{
				analyzer.CategoryOnPage: 80,
			},
		},
	}
}

func testBacklinks() providers.Static {
	return providers.Static{
		BacklinkData: map[string]analyzer.BacklinkMetrics{
			myURL:         {TotalBacklinks: 50, ReferringDomains: 10},
			competitorURL: {TotalBacklinks: 400, ReferringDomains: 90},
		},
		SERPData: map[string]analyzer.SERPFeatures{
			myURL:         {EstimatedPosition: 12, Competition: "High"},
			competitorURL: {EstimatedPosition: 3, HasFeaturedSnippet: true, Competition: "High"},
		},
	}
}

func newTestService(pages PageSource, backlinks providers.BacklinkProvider, serp providers.SERPProvider, opts Options) *Service {
	s := NewService(pages, backlinks, serp, opts)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	s.newID = func() string { return "audit-1" }
	return s
}

func validRequest() Request {
	return Request{MyURL: myURL, CompetitorURL: competitorURL, Keyword: "seo tools"}
}

func TestCompare(t *testing.T) {
	fixtures := testBacklinks()
	s := newTestService(testPages(), fixtures, fixtures, Options{})

	result, err := s.Compare(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "audit-1", result.ID)
	assert.Empty(t, result.Warnings)
	assert.NotNil(t, result.Warnings)
	assert.Equal(t, "seo tools", result.Meta.Keyword)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), result.Meta.AnalysisDate)
	assert.Equal(t, 400, result.Backlinks.CompetitorPage.TotalBacklinks)
	assert.Equal(t, 12, result.SERPFeatures.MyPage.EstimatedPosition)
	assert.Equal(t, "Marketing software reviews", result.Pages.MyPage.Title)

	recs := result.Recommendations
	assert.Contains(t, titlesOf(recs.QuickWins), "Add target keyword to meta title")
	assert.Contains(t, titlesOf(recs.Content), "Expand content length")
	assert.Equal(t, []string{"Add FAQPage schema markup"}, titlesOf(recs.Schema))
	assert.Contains(t, titlesOf(recs.Backlinks), "Build More Quality Backlinks")
	assert.Contains(t, titlesOf(recs.SERP), "Improve Search Rankings")
}

func TestCompareIsolatesCollaboratorFailures(t *testing.T) {
	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	defer storage.Shutdown()

	pages := fakePages{competitorURL: testPages()[competitorURL]}
	failing := providers.Failing{Err: errors.New("quota exceeded")}
	s := newTestService(pages, failing, failing, Options{Stats: storage})

	result, err := s.Compare(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, result.Warnings, 5)
	assert.Contains(t, result.Warnings[0], "fetch_page failed for "+myURL)
	assert.Contains(t, result.Warnings[0], "connection refused")
	assert.Contains(t, result.Warnings[1], "backlinks failed for "+myURL)
	assert.Contains(t, result.Warnings[4], "serp_features failed for "+competitorURL)

	assert.Equal(t, myURL, result.Pages.MyPage.URL)
	assert.Empty(t, result.Pages.MyPage.Body)
	assert.Zero(t, result.Keywords.MyPage.Score)
	assert.Equal(t, analyzer.DefaultBacklinks(), result.Backlinks.MyPage)
	assert.Equal(t, "Unknown", result.SERPFeatures.CompetitorPage.Competition)
	assert.Empty(t, result.Recommendations.Backlinks)
	assert.Empty(t, result.Recommendations.SERP)

	current := storage.GetCurrentStats()
	assert.Equal(t, 1, current.Comparisons)
	assert.Equal(t, 5, current.CollaboratorFailures)
}

func TestCompareCollaboratorTimeout(t *testing.T) {
	fixtures := testBacklinks()
	s := newTestService(slowPages{}, fixtures, fixtures, Options{CollaboratorTimeout: 20 * time.Millisecond})

	start := time.Now()
	result, err := s.Compare(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], context.DeadlineExceeded.Error())
	assert.Equal(t, 50, result.Backlinks.MyPage.TotalBacklinks)
}

func TestCompareCanceled(t *testing.T) {
	fixtures := testBacklinks()
	s := newTestService(slowPages{}, fixtures, fixtures, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := s.Compare(ctx, validRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareAuditTimeout(t *testing.T) {
	fixtures := testBacklinks()
	s := newTestService(slowPages{}, fixtures, fixtures, Options{
		CollaboratorTimeout: time.Minute,
		AuditTimeout:        20 * time.Millisecond,
	})

	_, err := s.Compare(context.Background(), validRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"valid", validRequest(), false},
		{"trims whitespace", Request{MyURL: " " + myURL + " ", CompetitorURL: competitorURL, Keyword: " seo "}, false},
		{"missing keyword", Request{MyURL: myURL, CompetitorURL: competitorURL}, true},
		{"blank keyword", Request{MyURL: myURL, CompetitorURL: competitorURL, Keyword: "   "}, true},
		{"missing url", Request{MyURL: myURL, Keyword: "seo"}, true},
		{"relative url", Request{MyURL: "/guide", CompetitorURL: competitorURL, Keyword: "seo"}, true},
		{"unsupported scheme", Request{MyURL: "ftp://mine.test", CompetitorURL: competitorURL, Keyword: "seo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.req.Keyword), req.Keyword)
		})
	}
}

func TestCompareRejectsInvalidRequest(t *testing.T) {
	s := newTestService(testPages(), providers.Simulated{}, providers.Simulated{}, Options{})

	_, err := s.Compare(context.Background(), Request{MyURL: myURL})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCompareWithSimulatedProvidersIsStable(t *testing.T) {
	s := newTestService(testPages(), providers.Simulated{}, providers.Simulated{}, Options{})

	first, err := s.Compare(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := s.Compare(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func titlesOf(recs []analyzer.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}
