package model

import "time"

type SignalType string

const (
	SignalProblemStatement  SignalType = "problem_statement"
	SignalWillingnessToPay  SignalType = "willingness_to_pay"
	SignalCompetitorMention SignalType = "competitor_mention"
)

// Evidence links an opportunity to a raw post. (opportunity_id, raw_post_id,
// signal_type) is unique; re-attaching is a no-op.
type Evidence struct {
	ID            int64      `json:"id"`
	OpportunityID int64      `json:"opportunity_id"`
	RawPostID     int64      `json:"raw_post_id"`
	SignalType    SignalType `json:"signal_type"`
	Weight        float64    `json:"weight"`
	CreatedAt     time.Time  `json:"created_at"`
}

// EvidenceRecord is evidence joined with the latest analysis of its post,
// the scoring engine's input row.
type EvidenceRecord struct {
	Evidence
	PainSeverity     int       `json:"pain_severity"`
	WillingnessToPay bool      `json:"willingness_to_pay"`
	PostScrapedAt    time.Time `json:"post_scraped_at"`
}
