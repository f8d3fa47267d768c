package dto

type MarketSnapshotRequest struct {
	MarketSize *float64 `json:"market_size"`
	GrowthRate *float64 `json:"growth_rate"`
	Source     string   `json:"source" binding:"required"`
}

type CompetitorListingRequest struct {
	Name        string   `json:"name" binding:"required"`
	URL         string   `json:"url"`
	Price       *float64 `json:"price"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int     `json:"review_count"`
	Source      string   `json:"source" binding:"required"`
}

type CommunitySignalRequest struct {
	Platform        string  `json:"platform" binding:"required"`
	Mentions        int     `json:"mentions" binding:"gte=0"`
	EngagementScore float64 `json:"engagement_score" binding:"gte=0"`
}
