package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gapradar.app/engine/common/logger"
	"gapradar.app/engine/internal/analyzer"
	"gapradar.app/engine/internal/cluster"
	"gapradar.app/engine/internal/extractor"
	"gapradar.app/engine/internal/ledger"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/scoring"
	"gapradar.app/engine/internal/store"
)

// RunName identifies pipeline batches in scraper run metadata.
const RunName = "opportunity_pipeline"

// ErrPipelineBusy is returned when another runner holds the batch lease.
var ErrPipelineBusy = errors.New("pipeline already running")

// StoreProvider exposes the stores a batch needs. *store.Stores satisfies it.
type StoreProvider interface {
	Posts() store.PostStore
	Analyses() store.AnalysisStore
	Opportunities() store.OpportunityStore
	Evidence() store.EvidenceStore
	MarketData() store.MarketDataStore
	ScraperRuns() store.ScraperRunStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(sp StoreProvider) error) error
}

// Locker is the batch mutual-exclusion lease.
type Locker interface {
	Acquire(ctx context.Context) (token string, ok bool, err error)
	Release(ctx context.Context, token string) error
}

type Config struct {
	// Default batch size when the trigger doesn't specify one.
	MaxPosts int
}

// PostFailure records one post the batch could not process.
type PostFailure struct {
	PostID int64  `json:"post_id"`
	Error  string `json:"error"`
}

// Report summarizes one batch run. Selected = Processed + Skipped + Failed
// unless the batch aborted early.
type Report struct {
	Selected             int           `json:"selected"`
	Processed            int           `json:"processed"`
	Skipped              int           `json:"skipped"`
	Failed               int           `json:"failed"`
	OpportunitiesCreated int           `json:"opportunities_created"`
	OpportunitiesUpdated int           `json:"opportunities_updated"`
	Failures             []PostFailure `json:"failures,omitempty"`
}

// Pipeline runs the extract -> cluster -> ledger -> score loop over
// unprocessed posts. Exactly one batch runs at a time across all replicas.
type Pipeline struct {
	extractor *extractor.Extractor
	clusterer *cluster.Clusterer
	ledger    *ledger.Ledger
	scorer    *scoring.Engine
	stores    StoreProvider
	txRunner  TxRunner
	lock      Locker
	cfg       Config
}

func New(ex *extractor.Extractor, cl *cluster.Clusterer, led *ledger.Ledger, sc *scoring.Engine,
	stores StoreProvider, txRunner TxRunner, lock Locker, cfg Config,
) *Pipeline {
	return &Pipeline{
		extractor: ex,
		clusterer: cl,
		ledger:    led,
		scorer:    sc,
		stores:    stores,
		txRunner:  txRunner,
		lock:      lock,
		cfg:       cfg,
	}
}

// RunBatch processes up to maxPosts unprocessed posts, oldest scraped first.
// Each post is one transactional unit; an analysis failure isolates to its
// post, a storage failure aborts the batch (committed units stand). The
// report is returned even on error.
func (p *Pipeline) RunBatch(ctx context.Context, maxPosts int) (Report, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "engine.pipeline"})

	token, ok, err := p.lock.Acquire(ctx)
	if err != nil {
		return Report{}, err
	}
	if !ok {
		return Report{}, ErrPipelineBusy
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(ctx), token); err != nil {
			slog.WarnContext(ctx, "failed to release pipeline lock", "error", err)
		}
	}()

	if maxPosts <= 0 {
		maxPosts = p.cfg.MaxPosts
	}

	report, runErr := p.process(ctx, maxPosts)

	p.recordRun(ctx, report, runErr)

	if runErr != nil {
		return report, runErr
	}

	slog.InfoContext(ctx, "pipeline batch complete",
		"selected", report.Selected,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"opportunities_created", report.OpportunitiesCreated,
		"opportunities_updated", report.OpportunitiesUpdated)

	return report, nil
}

func (p *Pipeline) process(ctx context.Context, maxPosts int) (Report, error) {
	var report Report

	posts, err := p.stores.Posts().ListUnprocessed(ctx, int32(maxPosts))
	if err != nil {
		return report, fmt.Errorf("listing unprocessed posts: %w", err)
	}
	report.Selected = len(posts)

	for _, post := range posts {
		// Cancellation is honored between posts, never inside a unit.
		if err := ctx.Err(); err != nil {
			return report, err
		}

		signal, err := p.extractor.Extract(ctx, post)
		if err != nil {
			if errors.Is(err, analyzer.ErrAnalysisUnavailable) {
				// Post stays unprocessed; the next batch retries it.
				report.Failed++
				report.Failures = append(report.Failures, PostFailure{PostID: post.ID, Error: err.Error()})
				slog.WarnContext(ctx, "post analysis failed, continuing batch",
					"post_id", post.ID,
					"error", err)
				continue
			}
			return report, fmt.Errorf("extracting post %d: %w", post.ID, err)
		}

		if signal == nil {
			if err := p.stores.Posts().MarkProcessed(ctx, post.ID); err != nil {
				return report, fmt.Errorf("marking post %d processed: %w", post.ID, err)
			}
			report.Skipped++
			continue
		}

		created, err := p.processSignal(ctx, post.ID, *signal)
		if err != nil {
			return report, fmt.Errorf("processing post %d: %w", post.ID, err)
		}
		if created {
			report.OpportunitiesCreated++
		} else {
			report.OpportunitiesUpdated++
		}
		report.Processed++
	}

	return report, nil
}

// processSignal runs one post's cluster/ledger/score unit in a single
// transaction, so a partial unit never becomes visible.
func (p *Pipeline) processSignal(ctx context.Context, postID int64, sig model.Signal) (created bool, err error) {
	err = p.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		open, err := sp.Opportunities().ListOpen(ctx)
		if err != nil {
			return fmt.Errorf("listing open opportunities: %w", err)
		}

		decision := p.clusterer.Decide(sig, open)

		var oppID int64
		if decision.Attach {
			oppID = decision.OpportunityID
			matched := findOpportunity(open, oppID)
			keywords, summary := p.clusterer.MergeCentroid(matched, sig)
			if err := sp.Opportunities().UpdateSnapshot(ctx, oppID, keywords, summary); err != nil {
				return fmt.Errorf("updating opportunity snapshot: %w", err)
			}
		} else {
			opp := p.clusterer.NewOpportunity(sig)
			if err := sp.Opportunities().Create(ctx, &opp); err != nil {
				return fmt.Errorf("creating opportunity: %w", err)
			}
			oppID = opp.ID
			created = true
		}

		ctx := logger.WithLogFields(ctx, logger.LogFields{OpportunityID: logger.Ptr(oppID)})

		ledgerRes, err := p.ledger.Record(ctx, sp.Evidence(), sp.Opportunities(), oppID, sig)
		if err != nil {
			return err
		}

		if err := p.rescore(ctx, sp, oppID); err != nil {
			return err
		}

		if err := sp.Posts().MarkProcessed(ctx, postID); err != nil {
			return fmt.Errorf("marking post processed: %w", err)
		}

		slog.InfoContext(ctx, "signal clustered",
			"attached", decision.Attach,
			"similarity", decision.Score,
			"evidence_added", ledgerRes.Added,
			"evidence_count", ledgerRes.EvidenceCount)

		return nil
	})
	return created, err
}

// rescore recomputes every score of an opportunity from its persisted
// evidence, latest analyses, and freshest market snapshot.
func (p *Pipeline) rescore(ctx context.Context, sp StoreProvider, oppID int64) error {
	opp, err := sp.Opportunities().GetByID(ctx, oppID)
	if err != nil {
		return fmt.Errorf("loading opportunity for scoring: %w", err)
	}

	records, err := sp.Evidence().ListRecords(ctx, oppID)
	if err != nil {
		return fmt.Errorf("loading evidence records: %w", err)
	}

	market, err := sp.MarketData().GetLatestByOpportunity(ctx, oppID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("loading market snapshot: %w", err)
	}

	scores := p.scorer.Compute(*opp, records, market)

	if err := sp.Opportunities().SetScores(ctx, oppID, scores); err != nil {
		return fmt.Errorf("persisting scores: %w", err)
	}
	return nil
}

func (p *Pipeline) recordRun(ctx context.Context, report Report, runErr error) {
	var errMsg *string
	if runErr != nil {
		msg := logger.Truncate(runErr.Error(), 500)
		errMsg = &msg
	}

	// Run metadata is observability, not a batch outcome. Record with a
	// context that survives caller cancellation.
	recordCtx := context.WithoutCancel(ctx)
	if err := p.stores.ScraperRuns().RecordRun(recordCtx, RunName, runErr == nil, errMsg, report.Processed); err != nil {
		slog.ErrorContext(ctx, "failed to record pipeline run", "error", err)
	}
}

func findOpportunity(open []model.Opportunity, oppID int64) model.Opportunity {
	for _, opp := range open {
		if opp.ID == oppID {
			return opp
		}
	}
	return model.Opportunity{}
}
