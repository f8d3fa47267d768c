package model

import "time"

type ProductCategory string

const (
	CategoryNewInvention       ProductCategory = "new_invention"
	CategoryBetterAlternative  ProductCategory = "better_alternative"
	CategoryCheaperOption      ProductCategory = "cheaper_option"
	CategoryQualityImprovement ProductCategory = "quality_improvement"
	CategoryNone               ProductCategory = "none"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryNewInvention, CategoryBetterAlternative, CategoryCheaperOption,
		CategoryQualityImprovement, CategoryNone:
		return true
	}
	return false
}

// PostAnalysis is one analyzer pass over a raw post. Rows are append-only;
// the newest row per raw_post_id is authoritative.
type PostAnalysis struct {
	ID               int64           `json:"id"`
	RawPostID        int64           `json:"raw_post_id"`
	ProblemSummary   string          `json:"problem_summary"`
	PainSeverity     int             `json:"pain_severity"`
	WillingnessToPay bool            `json:"willingness_to_pay"`
	ProductCategory  ProductCategory `json:"product_category"`
	Keywords         []string        `json:"keywords"`
	AnalyzedAt       time.Time       `json:"analyzed_at"`
}

// PostAnalysisResult is the analyzer adapter's output before persistence.
type PostAnalysisResult struct {
	ProblemSummary   string
	PainSeverity     int
	WillingnessToPay bool
	ProductCategory  ProductCategory
	Keywords         []string
}

// Signal is the normalized per-post output of the extractor, the unit the
// clusterer and ledger operate on.
type Signal struct {
	RawPostID        int64
	ProblemSummary   string
	PainSeverity     int
	WillingnessToPay bool
	Category         ProductCategory
	Keywords         []string
	ScrapedAt        time.Time
}
