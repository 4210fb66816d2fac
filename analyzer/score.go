package analyzer

import "math"

// categoryWeights are the fixed weights of the overall score
var categoryWeights = map[Category]float64{
	CategoryOnPage:              0.25,
	CategoryContent:             0.25,
	CategoryTechnical:           0.20,
	CategorySchema:              0.15,
	CategoryKeywordOptimization: 0.15,
}

// OverallScore returns the weighted average of the defined category scores.
// Undefined categories are left out of both the sum and the total weight, so
// the result is renormalized over what is present. No defined category gives 0.
func OverallScore(scores CategoryScores) int {
	total := 0.0
	weight := 0.0
	for _, category := range Categories {
		score, ok := scores[category]
		if !ok {
			continue
		}
		total += float64(score) * categoryWeights[category]
		weight += categoryWeights[category]
	}
	if weight == 0 {
		return 0
	}
	return int(math.Round(total / weight))
}

// DetermineWinner picks the page with the strictly higher score
func DetermineWinner(myScore, competitorScore int) Winner {
	switch {
	case myScore > competitorScore:
		return WinnerMyPage
	case competitorScore > myScore:
		return WinnerCompetitorPage
	default:
		return WinnerTie
	}
}

// CompareCategories builds the per-category comparison. An undefined score
// compares as 0.
func CompareCategories(mine, theirs CategoryScores) map[Category]CategoryComparison {
	out := make(map[Category]CategoryComparison, len(Categories))
	for _, category := range Categories {
		my := mine[category]
		competitor := theirs[category]
		out[category] = CategoryComparison{
			MyScore:         my,
			CompetitorScore: competitor,
			Winner:          DetermineWinner(my, competitor),
			Gap:             competitor - my,
		}
	}
	return out
}
