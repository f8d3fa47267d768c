package cluster

import (
	"gapradar.app/engine/internal/model"
)

type Config struct {
	KeywordWeight       float64
	CategoryWeight      float64
	SummaryWeight       float64
	AttachmentThreshold float64
}

// Decision is the clusterer's verdict for one signal.
type Decision struct {
	// Attach is false when a new opportunity should be created.
	Attach        bool
	OpportunityID int64
	Score         float64
}

// Clusterer assigns signals to opportunities by deterministic similarity.
// Same signal against the same open set always yields the same decision.
type Clusterer struct {
	cfg Config
}

func New(cfg Config) *Clusterer {
	return &Clusterer{cfg: cfg}
}

// Decide scores the signal against every open opportunity and picks the
// best match at or above the attachment threshold. Ties break toward the
// lowest opportunity ID so replays produce identical assignments.
func (c *Clusterer) Decide(sig model.Signal, open []model.Opportunity) Decision {
	best := Decision{}

	for _, opp := range open {
		score := c.Similarity(sig, opp)
		if score < c.cfg.AttachmentThreshold {
			continue
		}
		if !best.Attach || score > best.Score || (score == best.Score && opp.ID < best.OpportunityID) {
			best = Decision{Attach: true, OpportunityID: opp.ID, Score: score}
		}
	}

	return best
}

// Similarity blends keyword, category, and summary similarity.
// Category agreement alone can never attach: if neither keywords nor
// summaries overlap, the score is 0 regardless of category.
func (c *Clusterer) Similarity(sig model.Signal, opp model.Opportunity) float64 {
	kw := Jaccard(sig.Keywords, opp.Keywords)
	sum := SummaryOverlap(sig.ProblemSummary, opp.ProblemSummary)
	if kw == 0 && sum == 0 {
		return 0
	}

	cat := 0.0
	if sig.Category == opp.Category {
		cat = 1.0
	}

	return c.cfg.KeywordWeight*kw + c.cfg.CategoryWeight*cat + c.cfg.SummaryWeight*sum
}

// NewOpportunity seeds a fresh opportunity from an unmatched signal.
func (c *Clusterer) NewOpportunity(sig model.Signal) model.Opportunity {
	return model.Opportunity{
		Title:          titleFrom(sig),
		ProblemSummary: sig.ProblemSummary,
		Category:       sig.Category,
		Keywords:       sig.Keywords,
		GrowthPattern:  model.GrowthEmerging,
		Status:         model.OpportunityStatusActive,
		DetectedAt:     sig.ScrapedAt,
	}
}

// MergeCentroid folds a newly attached signal into the opportunity's
// matching snapshot: keyword union (stable order, existing first) and the
// longer non-empty summary.
func (c *Clusterer) MergeCentroid(opp model.Opportunity, sig model.Signal) (keywords []string, summary string) {
	seen := make(map[string]struct{}, len(opp.Keywords)+len(sig.Keywords))
	keywords = make([]string, 0, len(opp.Keywords)+len(sig.Keywords))
	for _, kw := range opp.Keywords {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}
	for _, kw := range sig.Keywords {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}

	summary = opp.ProblemSummary
	if sig.ProblemSummary != "" && len(sig.ProblemSummary) > len(summary) {
		summary = sig.ProblemSummary
	}

	return keywords, summary
}

func titleFrom(sig model.Signal) string {
	if len(sig.Keywords) > 0 {
		return sig.Keywords[0]
	}
	const maxTitle = 80
	if len(sig.ProblemSummary) > maxTitle {
		return sig.ProblemSummary[:maxTitle]
	}
	return sig.ProblemSummary
}
