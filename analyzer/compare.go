package analyzer

import (
	"maps"
	"sync"
	"time"
)

// Input carries both pages and the externally resolved metrics into Compare
type Input struct {
	MyPage              PageDocument
	CompetitorPage      PageDocument
	Phrase              string
	MyBacklinks         BacklinkMetrics
	CompetitorBacklinks BacklinkMetrics
	MySERP              SERPFeatures
	CompetitorSERP      SERPFeatures
	AnalyzedAt          time.Time
}

// Compare analyzes both pages against the phrase and builds the full report.
// It is a pure function of in: the per-page keyword pipelines and the content
// gap analysis run concurrently and are joined before scoring.
func Compare(in Input) ComparisonReport {
	var (
		wg                sync.WaitGroup
		myKeyword, theirs KeywordAnalysis
		gaps              ContentGapAnalysis
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		myKeyword = AnalyzeKeyword(in.MyPage, in.Phrase)
	}()
	go func() {
		defer wg.Done()
		theirs = AnalyzeKeyword(in.CompetitorPage, in.Phrase)
	}()
	go func() {
		defer wg.Done()
		gaps = AnalyzeContentGaps(in.MyPage.Body, in.CompetitorPage.Body, in.Phrase)
	}()
	wg.Wait()

	myScores := withKeywordScore(in.MyPage.Scores, myKeyword)
	competitorScores := withKeywordScore(in.CompetitorPage.Scores, theirs)

	return ComparisonReport{
		Meta: ReportMeta{
			Keyword:      in.Phrase,
			AnalysisDate: in.AnalyzedAt,
		},
		Scores: PagePair[int]{
			MyPage:         OverallScore(myScores),
			CompetitorPage: OverallScore(competitorScores),
		},
		Categories:   CompareCategories(myScores, competitorScores),
		Keywords:     PagePair[KeywordAnalysis]{MyPage: myKeyword, CompetitorPage: theirs},
		ContentGaps:  gaps,
		Backlinks:    PagePair[BacklinkMetrics]{MyPage: in.MyBacklinks, CompetitorPage: in.CompetitorBacklinks},
		SERPFeatures: PagePair[SERPFeatures]{MyPage: in.MySERP, CompetitorPage: in.CompetitorSERP},
		Recommendations: Recommend(Evaluation{
			Input:             in,
			MyKeyword:         myKeyword,
			CompetitorKeyword: theirs,
			ContentGaps:       gaps,
			MyScores:          myScores,
			CompetitorScores:  competitorScores,
		}),
	}
}

// withKeywordScore returns a copy of scores where an undefined keyword
// optimization score is filled from the keyword analysis. A score supplied by
// the caller wins.
func withKeywordScore(scores CategoryScores, keyword KeywordAnalysis) CategoryScores {
	out := make(CategoryScores, len(scores)+1)
	maps.Copy(out, scores)
	if _, ok := out[CategoryKeywordOptimization]; !ok {
		out[CategoryKeywordOptimization] = keyword.Score
	}
	return out
}
