package store

import (
	"context"

	"gapradar.app/engine/internal/model"
)

// PostStore defines the contract for raw post data access
type PostStore interface {
	// CreateOrGet inserts the post, deduping on content_hash.
	// Returns the stored row and whether it was newly created.
	CreateOrGet(ctx context.Context, post *model.RawPost) (model.RawPost, bool, error)
	GetByID(ctx context.Context, id int64) (*model.RawPost, error)
	ListUnprocessed(ctx context.Context, limit int32) ([]model.RawPost, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// AnalysisStore defines the contract for post analysis data access.
// Rows are append-only; the latest row per post wins.
type AnalysisStore interface {
	Create(ctx context.Context, analysis *model.PostAnalysis) error
	GetLatestByPost(ctx context.Context, rawPostID int64) (*model.PostAnalysis, error)
}

type ListOpportunitiesFilter struct {
	Status        model.OpportunityStatus
	Category      model.ProductCategory
	MinConfidence int
	Limit         int32
}

// OpportunityStore defines the contract for opportunity data access
type OpportunityStore interface {
	Create(ctx context.Context, opp *model.Opportunity) error
	GetByID(ctx context.Context, id int64) (*model.Opportunity, error)
	// ListOpen returns all active opportunities, the clusterer's candidate set.
	ListOpen(ctx context.Context) ([]model.Opportunity, error)
	List(ctx context.Context, filter ListOpportunitiesFilter) ([]model.Opportunity, error)
	// UpdateSnapshot replaces the cluster centroid (keywords + summary).
	UpdateSnapshot(ctx context.Context, id int64, keywords []string, summary string) error
	SetScores(ctx context.Context, id int64, scores model.Scores) error
	SetEvidenceCount(ctx context.Context, id int64, count int) error
	Archive(ctx context.Context, id int64) error
}

// EvidenceStore defines the contract for evidence data access
type EvidenceStore interface {
	// CreateIfAbsent inserts unless (opportunity_id, raw_post_id, signal_type)
	// already exists. Returns whether a row was inserted.
	CreateIfAbsent(ctx context.Context, ev *model.Evidence) (bool, error)
	CountDistinctPosts(ctx context.Context, opportunityID int64) (int, error)
	ListByOpportunity(ctx context.Context, opportunityID int64) ([]model.Evidence, error)
	// ListRecords joins evidence with each post's latest analysis.
	ListRecords(ctx context.Context, opportunityID int64) ([]model.EvidenceRecord, error)
}

// MarketDataStore defines the contract for market snapshot data access
type MarketDataStore interface {
	GetLatestByOpportunity(ctx context.Context, opportunityID int64) (*model.MarketDataSnapshot, error)
	Upsert(ctx context.Context, snapshot *model.MarketDataSnapshot) error
}

// CompetitorListingStore defines the contract for competitor listing data access
type CompetitorListingStore interface {
	ListByOpportunity(ctx context.Context, opportunityID int64) ([]model.CompetitorListing, error)
	Upsert(ctx context.Context, listing *model.CompetitorListing) error
}

// CommunitySignalStore defines the contract for community signal data access
type CommunitySignalStore interface {
	GetLatestByOpportunity(ctx context.Context, opportunityID int64, platform string) (*model.CommunitySignalSnapshot, error)
	Upsert(ctx context.Context, snapshot *model.CommunitySignalSnapshot) error
}

// ScraperRunStore defines the contract for scraper run metadata
type ScraperRunStore interface {
	RecordRun(ctx context.Context, name string, success bool, errMsg *string, itemsProcessed int) error
	// ListLatest returns the most recent run per scraper name.
	ListLatest(ctx context.Context) ([]model.ScraperRun, error)
}
