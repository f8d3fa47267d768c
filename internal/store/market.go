package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/internal/model"
)

type marketDataStore struct {
	db DBTX
}

func (s *marketDataStore) GetLatestByOpportunity(ctx context.Context, opportunityID int64) (*model.MarketDataSnapshot, error) {
	var m model.MarketDataSnapshot
	err := s.db.QueryRow(ctx, `
		SELECT id, opportunity_id, market_size, growth_rate, source, collected_at
		FROM market_data_snapshots
		WHERE opportunity_id = $1
		ORDER BY collected_at DESC, id DESC
		LIMIT 1`, opportunityID,
	).Scan(&m.ID, &m.OpportunityID, &m.MarketSize, &m.GrowthRate, &m.Source, &m.CollectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *marketDataStore) Upsert(ctx context.Context, snapshot *model.MarketDataSnapshot) error {
	if snapshot.ID == 0 {
		snapshot.ID = id.New()
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO market_data_snapshots (id, opportunity_id, market_size, growth_rate, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING collected_at`,
		snapshot.ID, snapshot.OpportunityID, snapshot.MarketSize, snapshot.GrowthRate, snapshot.Source,
	).Scan(&snapshot.CollectedAt)
}

type competitorListingStore struct {
	db DBTX
}

func (s *competitorListingStore) ListByOpportunity(ctx context.Context, opportunityID int64) ([]model.CompetitorListing, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, opportunity_id, name, url, price, rating, review_count, source, collected_at
		FROM competitor_listings
		WHERE opportunity_id = $1
		ORDER BY collected_at DESC, id ASC`, opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []model.CompetitorListing
	for rows.Next() {
		var l model.CompetitorListing
		if err := rows.Scan(&l.ID, &l.OpportunityID, &l.Name, &l.URL, &l.Price, &l.Rating,
			&l.ReviewCount, &l.Source, &l.CollectedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *competitorListingStore) Upsert(ctx context.Context, listing *model.CompetitorListing) error {
	if listing.ID == 0 {
		listing.ID = id.New()
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO competitor_listings (id, opportunity_id, name, url, price, rating, review_count, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (opportunity_id, source, name) DO UPDATE
		SET url = EXCLUDED.url, price = EXCLUDED.price, rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count, collected_at = now()
		RETURNING id, collected_at`,
		listing.ID, listing.OpportunityID, listing.Name, listing.URL, listing.Price,
		listing.Rating, listing.ReviewCount, listing.Source,
	).Scan(&listing.ID, &listing.CollectedAt)
}

type communitySignalStore struct {
	db DBTX
}

func (s *communitySignalStore) GetLatestByOpportunity(ctx context.Context, opportunityID int64, platform string) (*model.CommunitySignalSnapshot, error) {
	var c model.CommunitySignalSnapshot
	err := s.db.QueryRow(ctx, `
		SELECT id, opportunity_id, platform, mentions, engagement_score, collected_at
		FROM community_signal_snapshots
		WHERE opportunity_id = $1 AND platform = $2
		ORDER BY collected_at DESC, id DESC
		LIMIT 1`, opportunityID, platform,
	).Scan(&c.ID, &c.OpportunityID, &c.Platform, &c.Mentions, &c.EngagementScore, &c.CollectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *communitySignalStore) Upsert(ctx context.Context, snapshot *model.CommunitySignalSnapshot) error {
	if snapshot.ID == 0 {
		snapshot.ID = id.New()
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO community_signal_snapshots (id, opportunity_id, platform, mentions, engagement_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING collected_at`,
		snapshot.ID, snapshot.OpportunityID, snapshot.Platform, snapshot.Mentions, snapshot.EngagementScore,
	).Scan(&snapshot.CollectedAt)
}
