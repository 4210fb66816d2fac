package analyzer

import (
	"github.com/RoaringBitmap/roaring"
)

// maxReportedTerms caps each term list of a content-gap analysis
const maxReportedTerms = 20

// vocabulary assigns term IDs in first-encountered order. Because my page is
// scanned before the competitor page, iterating any derived bitmap in
// ascending ID order yields terms in the order they were first seen.
type vocabulary struct {
	ids   map[string]uint32
	terms []string
}

func newVocabulary() *vocabulary {
	return &vocabulary{ids: make(map[string]uint32)}
}

func (v *vocabulary) index(tokens []string) *roaring.Bitmap {
	bm := roaring.New()
	for _, token := range tokens {
		id, ok := v.ids[token]
		if !ok {
			id = uint32(len(v.terms))
			v.ids[token] = id
			v.terms = append(v.terms, token)
		}
		bm.Add(id)
	}
	return bm
}

func (v *vocabulary) firstTerms(bm *roaring.Bitmap, limit int) []string {
	out := make([]string, 0, min(limit, int(bm.GetCardinality())))
	it := bm.Iterator()
	for it.HasNext() && len(out) < limit {
		out = append(out, v.terms[it.Next()])
	}
	return out
}

// AnalyzeContentGaps compares the filtered vocabularies of two page bodies.
// phrase does not currently influence the result.
func AnalyzeContentGaps(myContent, competitorContent, phrase string) ContentGapAnalysis {
	myTokens := Tokenize(myContent)
	competitorTokens := Tokenize(competitorContent)

	vocab := newVocabulary()
	mine := vocab.index(FilterVocabulary(myTokens))
	theirs := vocab.index(FilterVocabulary(competitorTokens))

	myUnique := roaring.AndNot(mine, theirs)
	competitorUnique := roaring.AndNot(theirs, mine)
	common := roaring.And(mine, theirs)

	myUniqueCount := int(myUnique.GetCardinality())
	competitorUniqueCount := int(competitorUnique.GetCardinality())
	commonCount := int(common.GetCardinality())

	return ContentGapAnalysis{
		MyUniqueTerms:         vocab.firstTerms(myUnique, maxReportedTerms),
		CompetitorUniqueTerms: vocab.firstTerms(competitorUnique, maxReportedTerms),
		CommonTerms:           vocab.firstTerms(common, maxReportedTerms),
		ContentDepth: ContentDepth{
			MyPage: PageDepth{
				WordCount:     len(myTokens),
				UniqueTerms:   myUniqueCount,
				TermDiversity: ratio(myUniqueCount, len(myTokens)),
			},
			CompetitorPage: PageDepth{
				WordCount:     len(competitorTokens),
				UniqueTerms:   competitorUniqueCount,
				TermDiversity: ratio(competitorUniqueCount, len(competitorTokens)),
			},
		},
		TopicalCoverage: TopicalCoverage{
			MyCoverage:         ratio(commonCount, commonCount+competitorUniqueCount),
			CompetitorCoverage: ratio(commonCount, commonCount+myUniqueCount),
		},
	}
}

// ratio divides n by d, returning 0 when d is 0
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
