package scoring

import (
	"math"
	"time"

	"gapradar.app/engine/core/config"
	"gapradar.app/engine/internal/model"
)

// Engine recomputes every score of an opportunity from its full evidence
// ledger. No incremental updates: given the same rows, the same market
// snapshot, and the same clock, the output is identical.
type Engine struct {
	cfg config.ScoringConfig
	now func() time.Time
}

func New(cfg config.ScoringConfig) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// NewWithClock injects a fixed clock for deterministic windows.
func NewWithClock(cfg config.ScoringConfig, now func() time.Time) *Engine {
	return &Engine{cfg: cfg, now: now}
}

// Compute derives all scores. market may be nil; timing then falls back to
// pattern bonuses only.
func (e *Engine) Compute(opp model.Opportunity, records []model.EvidenceRecord, market *model.MarketDataSnapshot) model.Scores {
	now := e.now()

	pattern := e.growthPattern(opp, records, now)

	return model.Scores{
		PainSeverity:  e.painSeverity(records),
		Confidence:    e.confidence(records),
		TrendScore:    e.trendScore(records, now),
		TimingScore:   e.timingScore(pattern, market, now),
		GrowthPattern: pattern,
	}
}

// painSeverity is the weighted mean of per-post pain over all evidence rows,
// weighted by each row's evidence weight. One decimal, clamped to [0, 10].
func (e *Engine) painSeverity(records []model.EvidenceRecord) float64 {
	var weightSum, painSum float64
	for _, r := range records {
		weightSum += r.Weight
		painSum += r.Weight * float64(r.PainSeverity)
	}
	if weightSum == 0 {
		return 0
	}
	return clamp(round1(painSum/weightSum), 0, 10)
}

// confidence saturates with distinct corroborating posts, gets a capped
// bonus for willingness-to-pay corroboration, and is penalized when all
// evidence arrived inside one narrow window (a single burst is weaker
// corroboration than sustained signal). Monotonic non-decreasing in the
// number of distinct posts, everything else held fixed.
func (e *Engine) confidence(records []model.EvidenceRecord) int {
	posts := distinctPosts(records)
	if len(posts) == 0 {
		return 0
	}

	base := 100 * (1 - math.Exp(-e.cfg.ConfidenceK*float64(len(posts))))

	wtpPosts := make(map[int64]struct{})
	for _, r := range records {
		if r.SignalType == model.SignalWillingnessToPay {
			wtpPosts[r.RawPostID] = struct{}{}
		}
	}
	bonus := len(wtpPosts) * e.cfg.WTPBonus
	if bonus > e.cfg.WTPBonusCap {
		bonus = e.cfg.WTPBonusCap
	}

	score := base + float64(bonus)

	if len(posts) >= 2 && e.withinNarrowWindow(records) {
		score *= e.cfg.NarrowWindowPenalty
	}

	return int(clamp(math.Floor(score), 0, 100))
}

// trendScore counts evidence rows created inside the trailing trend window.
func (e *Engine) trendScore(records []model.EvidenceRecord, now time.Time) int {
	cutoff := now.Add(-e.cfg.TrendWindow)
	count := 0
	for _, r := range records {
		if !r.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count
}

// growthPattern buckets the opportunity's evidence trajectory:
// emerging while the opportunity is younger than one trend window with
// little evidence, accelerating when the recent window clearly outpaces
// the one before it, regular otherwise.
func (e *Engine) growthPattern(opp model.Opportunity, records []model.EvidenceRecord, now time.Time) model.GrowthPattern {
	cutoff := now.Add(-e.cfg.TrendWindow)
	priorCutoff := now.Add(-2 * e.cfg.TrendWindow)

	recent, prior := 0, 0
	for _, r := range records {
		switch {
		case !r.CreatedAt.Before(cutoff):
			recent++
		case !r.CreatedAt.Before(priorCutoff):
			prior++
		}
	}

	if opp.DetectedAt.After(cutoff) && len(records) < e.cfg.EmergingMaxEvidence {
		return model.GrowthEmerging
	}

	floor := prior
	if floor < 1 {
		floor = 1
	}
	if recent >= 2 && float64(recent) > e.cfg.AccelerationFactor*float64(floor) {
		return model.GrowthAccelerating
	}

	return model.GrowthRegular
}

// timingScore starts from a neutral base, rewards momentum, and adds a
// bounded market-growth bonus when a fresh snapshot exists. Without market
// data the score simply carries the pattern bonuses. One decimal, [0, 10].
func (e *Engine) timingScore(pattern model.GrowthPattern, market *model.MarketDataSnapshot, now time.Time) float64 {
	score := e.cfg.TimingBase

	switch pattern {
	case model.GrowthAccelerating:
		score += e.cfg.TimingAccelBonus
	case model.GrowthEmerging:
		score += e.cfg.TimingEmergingBonus
	}

	if market != nil && market.GrowthRate != nil &&
		now.Sub(market.CollectedAt) <= e.cfg.MarketFreshness {
		score += clamp(*market.GrowthRate*e.cfg.MarketGrowthScale, 0, e.cfg.MarketGrowthCap)
	}

	return clamp(round1(score), 0, 10)
}

// withinNarrowWindow reports whether every evidence row was created inside
// one NarrowWindow span.
func (e *Engine) withinNarrowWindow(records []model.EvidenceRecord) bool {
	if len(records) == 0 {
		return false
	}
	min, max := records[0].CreatedAt, records[0].CreatedAt
	for _, r := range records[1:] {
		if r.CreatedAt.Before(min) {
			min = r.CreatedAt
		}
		if r.CreatedAt.After(max) {
			max = r.CreatedAt
		}
	}
	return max.Sub(min) <= e.cfg.NarrowWindow
}

func distinctPosts(records []model.EvidenceRecord) map[int64]struct{} {
	posts := make(map[int64]struct{}, len(records))
	for _, r := range records {
		posts[r.RawPostID] = struct{}{}
	}
	return posts
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
