package dto

import (
	"gapradar.app/engine/internal/model"
)

type ListOpportunitiesQuery struct {
	Status        string `form:"status"`
	Category      string `form:"category"`
	MinConfidence int    `form:"min_confidence"`
	Limit         int32  `form:"limit"`
}

type OpportunitiesResponse struct {
	Opportunities []model.Opportunity `json:"opportunities"`
}

type EvidenceResponse struct {
	Evidence []model.Evidence `json:"evidence"`
}

type CompetitorsResponse struct {
	Competitors []model.CompetitorListing `json:"competitors"`
}

type ScraperRunsResponse struct {
	Runs []model.ScraperRun `json:"runs"`
}

type RunPipelineRequest struct {
	MaxPosts int `json:"max_posts,omitempty"`
}
