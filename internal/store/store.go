package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the same
// stores run against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores provides typed accessors over a single database handle.
type Stores struct {
	db DBTX
}

func NewStores(db DBTX) *Stores {
	return &Stores{db: db}
}

func (s *Stores) Posts() PostStore {
	return &postStore{db: s.db}
}

func (s *Stores) Analyses() AnalysisStore {
	return &analysisStore{db: s.db}
}

func (s *Stores) Opportunities() OpportunityStore {
	return &opportunityStore{db: s.db}
}

func (s *Stores) Evidence() EvidenceStore {
	return &evidenceStore{db: s.db}
}

func (s *Stores) MarketData() MarketDataStore {
	return &marketDataStore{db: s.db}
}

func (s *Stores) Competitors() CompetitorListingStore {
	return &competitorListingStore{db: s.db}
}

func (s *Stores) CommunitySignals() CommunitySignalStore {
	return &communitySignalStore{db: s.db}
}

func (s *Stores) ScraperRuns() ScraperRunStore {
	return &scraperRunStore{db: s.db}
}
