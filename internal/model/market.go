package model

import "time"

// MarketDataSnapshot is point-in-time market context for an opportunity,
// collected by external enrichment scrapers. Scoring reads the latest
// snapshot and degrades gracefully when none exists.
type MarketDataSnapshot struct {
	ID            int64     `json:"id"`
	OpportunityID int64     `json:"opportunity_id"`
	MarketSize    *float64  `json:"market_size,omitempty"`
	GrowthRate    *float64  `json:"growth_rate,omitempty"`
	Source        string    `json:"source"`
	CollectedAt   time.Time `json:"collected_at"`
}

// CompetitorListing is an existing product serving an opportunity's niche.
type CompetitorListing struct {
	ID            int64     `json:"id"`
	OpportunityID int64     `json:"opportunity_id"`
	Name          string    `json:"name"`
	URL           string    `json:"url,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	ReviewCount   *int      `json:"review_count,omitempty"`
	Source        string    `json:"source"`
	CollectedAt   time.Time `json:"collected_at"`
}

// CommunitySignalSnapshot aggregates community chatter volume per platform.
type CommunitySignalSnapshot struct {
	ID              int64     `json:"id"`
	OpportunityID   int64     `json:"opportunity_id"`
	Platform        string    `json:"platform"`
	Mentions        int       `json:"mentions"`
	EngagementScore float64   `json:"engagement_score"`
	CollectedAt     time.Time `json:"collected_at"`
}
