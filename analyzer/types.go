package analyzer

import "time"

// Category identifies one of the scored SEO categories
type Category string

const (
	CategoryOnPage              Category = "onPage"
	CategoryContent             Category = "content"
	CategoryTechnical           Category = "technical"
	CategorySchema              Category = "schema"
	CategoryKeywordOptimization Category = "keywordOptimization"
)

// Categories lists every scored category in reporting order
var Categories = []Category{
	CategoryOnPage,
	CategoryContent,
	CategoryTechnical,
	CategorySchema,
	CategoryKeywordOptimization,
}

// CategoryScores maps a category to its 0-100 score. A missing key means the
// score is undefined for that page, which is not the same as a score of 0.
type CategoryScores map[Category]int

// PageDocument is an already-extracted web page. The analyzer never mutates it.
type PageDocument struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	H1          string         `json:"h1"`
	H2          []string       `json:"h2"`
	Body        string         `json:"body"`
	Schema      []SchemaEntry  `json:"schema"`
	Technical   Technical      `json:"technical"`
	Scores      CategoryScores `json:"scores"`
}

// SchemaEntry is one structured-data item found on a page
type SchemaEntry struct {
	Type       string   `json:"type"`
	Context    string   `json:"context"`
	Properties []string `json:"properties"`
}

// Technical holds the technical sub-scores of a page
type Technical struct {
	Score          int  `json:"score"`
	Performance    int  `json:"performance"`
	Accessibility  int  `json:"accessibility"`
	BestPractices  int  `json:"bestPractices"`
	SEO            int  `json:"seo"`
	MobileFriendly bool `json:"mobileFriendly"`
	LoadTimeMs     int  `json:"loadTime"`
	PageSizeBytes  int  `json:"pageSize"`
}

// BacklinkMetrics describes the backlink profile of a URL.
// The zero value is the default used when a lookup fails.
type BacklinkMetrics struct {
	TotalBacklinks      int               `json:"totalBacklinks"`
	ReferringDomains    int               `json:"referringDomains"`
	DomainAuthority     int               `json:"domainAuthority"`
	TrustFlow           int               `json:"trustFlow"`
	CitationFlow        int               `json:"citationFlow"`
	ToxicBacklinks      int               `json:"toxicBacklinks"`
	TopReferringDomains []ReferringDomain `json:"topReferringDomains"`
	BacklinkTypes       BacklinkTypes     `json:"backlinkTypes"`
}

type ReferringDomain struct {
	Domain    string `json:"domain"`
	Backlinks int    `json:"backlinks"`
}

type BacklinkTypes struct {
	Dofollow int `json:"dofollow"`
	Nofollow int `json:"nofollow"`
	Text     int `json:"text"`
	Image    int `json:"image"`
}

// SERPFeatures describes the search result features a URL holds for a phrase
type SERPFeatures struct {
	HasFeaturedSnippet bool   `json:"hasFeaturedSnippet"`
	HasKnowledgePanel  bool   `json:"hasKnowledgePanel"`
	HasLocalPack       bool   `json:"hasLocalPack"`
	HasImageResults    bool   `json:"hasImageResults"`
	HasVideoResults    bool   `json:"hasVideoResults"`
	HasShoppingResults bool   `json:"hasShoppingResults"`
	HasPeopleAlsoAsk   bool   `json:"hasPeopleAlsoAsk"`
	EstimatedPosition  int    `json:"estimatedPosition"`
	SearchVolume       int    `json:"searchVolume"`
	Competition        string `json:"competition"`
}

// DefaultBacklinks is substituted when a backlink lookup fails
func DefaultBacklinks() BacklinkMetrics {
	return BacklinkMetrics{TopReferringDomains: []ReferringDomain{}}
}

// DefaultSERPFeatures is substituted when a SERP lookup fails
func DefaultSERPFeatures() SERPFeatures {
	return SERPFeatures{Competition: "Unknown"}
}

// KeywordAnalysis describes placement and density of a phrase on one page
type KeywordAnalysis struct {
	Keyword    string           `json:"keyword"`
	Density    float64          `json:"density"`
	Frequency  int              `json:"frequency"`
	Positions  KeywordPositions `json:"positions"`
	Variations []string         `json:"variations"`
	Score      int              `json:"score"`
}

type KeywordPositions struct {
	InTitle         bool      `json:"inTitle"`
	InDescription   bool      `json:"inDescription"`
	InH1            bool      `json:"inH1"`
	InH2            []H2Match `json:"inH2"`
	InFirst100Words bool      `json:"inFirst100Words"`
	InLast100Words  bool      `json:"inLast100Words"`
}

// H2Match is an H2 heading (by original index) that contains the phrase
type H2Match struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ContentGapAnalysis compares the filtered vocabularies of two pages
type ContentGapAnalysis struct {
	MyUniqueTerms         []string        `json:"myUniqueTerms"`
	CompetitorUniqueTerms []string        `json:"competitorUniqueTerms"`
	CommonTerms           []string        `json:"commonTerms"`
	ContentDepth          ContentDepth    `json:"contentDepth"`
	TopicalCoverage       TopicalCoverage `json:"topicalCoverage"`
}

type ContentDepth struct {
	MyPage         PageDepth `json:"myPage"`
	CompetitorPage PageDepth `json:"competitorPage"`
}

type PageDepth struct {
	WordCount     int     `json:"wordCount"`
	UniqueTerms   int     `json:"uniqueTerms"`
	TermDiversity float64 `json:"termDiversity"`
}

type TopicalCoverage struct {
	MyCoverage         float64 `json:"myCoverage"`
	CompetitorCoverage float64 `json:"competitorCoverage"`
}

// Winner of a category comparison
type Winner string

const (
	WinnerMyPage         Winner = "myPage"
	WinnerCompetitorPage Winner = "competitorPage"
	WinnerTie            Winner = "tie"
)

type CategoryComparison struct {
	MyScore         int    `json:"myScore"`
	CompetitorScore int    `json:"competitorScore"`
	Winner          Winner `json:"winner"`
	Gap             int    `json:"gap"`
}

// Priority of a recommendation. Backlink, SERP and technical rules use the
// lower-case values, the on-page rules use the capitalized ones.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"

	PriorityHighLower   Priority = "high"
	PriorityMediumLower Priority = "medium"
)

type Recommendation struct {
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Impact      string   `json:"impact"`
	Difficulty  string   `json:"difficulty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// Recommendations groups recommendations into fixed buckets
type Recommendations struct {
	QuickWins []Recommendation `json:"quickWins"`
	Technical []Recommendation `json:"technical"`
	Content   []Recommendation `json:"content"`
	Schema    []Recommendation `json:"schema"`
	Backlinks []Recommendation `json:"backlinks"`
	SERP      []Recommendation `json:"serp"`
}

// Total returns the number of recommendations across all buckets
func (r Recommendations) Total() int {
	return len(r.QuickWins) + len(r.Technical) + len(r.Content) +
		len(r.Schema) + len(r.Backlinks) + len(r.SERP)
}

type ReportMeta struct {
	Keyword      string    `json:"keyword"`
	AnalysisDate time.Time `json:"analysisDate"`
}

type PagePair[T any] struct {
	MyPage         T `json:"myPage"`
	CompetitorPage T `json:"competitorPage"`
}

// ComparisonReport is the complete output of Compare
type ComparisonReport struct {
	Meta            ReportMeta                      `json:"meta"`
	Scores          PagePair[int]                   `json:"scores"`
	Categories      map[Category]CategoryComparison `json:"categories"`
	Keywords        PagePair[KeywordAnalysis]       `json:"keywordAnalysis"`
	ContentGaps     ContentGapAnalysis              `json:"contentGaps"`
	Backlinks       PagePair[BacklinkMetrics]       `json:"backlinks"`
	SERPFeatures    PagePair[SERPFeatures]          `json:"serpFeatures"`
	Recommendations Recommendations                 `json:"recommendations"`
}
