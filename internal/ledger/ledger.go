package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/store"
)

// Entry is one evidence row to attach for a signal.
type Entry struct {
	SignalType model.SignalType
	Weight     float64
}

// EntriesFor derives the evidence entries a signal contributes:
// always a problem_statement weighted by pain, willingness_to_pay when the
// author signals spend intent, and competitor_mention when the category
// implies existing products fall short.
func EntriesFor(sig model.Signal) []Entry {
	weight := float64(sig.PainSeverity) / 10.0
	if weight < 0.1 {
		weight = 0.1
	}

	entries := []Entry{{SignalType: model.SignalProblemStatement, Weight: weight}}

	if sig.WillingnessToPay {
		entries = append(entries, Entry{SignalType: model.SignalWillingnessToPay, Weight: 1.0})
	}

	if sig.Category == model.CategoryBetterAlternative || sig.Category == model.CategoryCheaperOption {
		entries = append(entries, Entry{SignalType: model.SignalCompetitorMention, Weight: 0.5})
	}

	return entries
}

// Result reports what Record changed.
type Result struct {
	Added         int
	Duplicates    int
	EvidenceCount int
}

// Ledger attaches a signal's evidence to an opportunity and keeps the
// opportunity's evidence_count consistent with the ledger.
type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// Record inserts each derived entry, ignoring ones already present, then
// recomputes evidence_count as COUNT(DISTINCT raw_post_id) and persists it.
// Re-running over the same signal is a no-op apart from the recount.
func (l *Ledger) Record(ctx context.Context, evidence store.EvidenceStore, opps store.OpportunityStore, opportunityID int64, sig model.Signal) (Result, error) {
	var res Result

	for _, entry := range EntriesFor(sig) {
		created, err := evidence.CreateIfAbsent(ctx, &model.Evidence{
			OpportunityID: opportunityID,
			RawPostID:     sig.RawPostID,
			SignalType:    entry.SignalType,
			Weight:        entry.Weight,
		})
		if err != nil {
			return Result{}, fmt.Errorf("attaching %s evidence: %w", entry.SignalType, err)
		}
		if created {
			res.Added++
		} else {
			res.Duplicates++
			slog.DebugContext(ctx, "duplicate evidence skipped",
				"opportunity_id", opportunityID,
				"raw_post_id", sig.RawPostID,
				"signal_type", entry.SignalType)
		}
	}

	count, err := evidence.CountDistinctPosts(ctx, opportunityID)
	if err != nil {
		return Result{}, fmt.Errorf("counting evidence posts: %w", err)
	}
	if err := opps.SetEvidenceCount(ctx, opportunityID, count); err != nil {
		return Result{}, fmt.Errorf("persisting evidence count: %w", err)
	}
	res.EvidenceCount = count

	return res, nil
}
