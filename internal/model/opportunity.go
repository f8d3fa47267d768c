package model

import "time"

type OpportunityStatus string

const (
	OpportunityStatusActive   OpportunityStatus = "active"
	OpportunityStatusArchived OpportunityStatus = "archived"
)

type GrowthPattern string

const (
	GrowthRegular      GrowthPattern = "regular"
	GrowthAccelerating GrowthPattern = "accelerating"
	GrowthEmerging     GrowthPattern = "emerging"
)

// Opportunity is a cluster of related pain-point signals with derived scores.
// Keywords and problem_summary form the cluster centroid used for matching.
type Opportunity struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	ProblemSummary  string            `json:"problem_summary"`
	Category        ProductCategory   `json:"category"`
	Keywords        []string          `json:"keywords"`
	ConfidenceScore int               `json:"confidence_score"`
	PainSeverity    float64           `json:"pain_severity"`
	TrendScore      int               `json:"trend_score"`
	TimingScore     float64           `json:"timing_score"`
	GrowthPattern   GrowthPattern     `json:"growth_pattern"`
	EvidenceCount   int               `json:"evidence_count"`
	Status          OpportunityStatus `json:"status"`
	DetectedAt      time.Time         `json:"detected_at"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Scores is the scoring engine's full recomputed output for one opportunity.
type Scores struct {
	PainSeverity  float64       `json:"pain_severity"`
	Confidence    int           `json:"confidence_score"`
	TrendScore    int           `json:"trend_score"`
	TimingScore   float64       `json:"timing_score"`
	GrowthPattern GrowthPattern `json:"growth_pattern"`
}
