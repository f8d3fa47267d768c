package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/common/logger"
	"gapradar.app/engine/internal/analyzer"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/store"
)

type Config struct {
	// Posts analyzed below this pain severity produce an analysis record
	// but no clustering signal.
	MinPainSeverity int
}

// Extractor runs exactly one analyzer call per post and persists the
// resulting analysis. The analysis record survives even when downstream
// clustering or scoring later fails.
type Extractor struct {
	analyzer analyzer.Analyzer
	analyses store.AnalysisStore
	cfg      Config
}

func New(a analyzer.Analyzer, analyses store.AnalysisStore, cfg Config) *Extractor {
	return &Extractor{analyzer: a, analyses: analyses, cfg: cfg}
}

// Extract analyzes a post and returns its signal. A nil signal with nil
// error means the post carries no actionable pain (below threshold or
// category none); the caller marks it processed and moves on.
// analyzer.ErrAnalysisUnavailable is returned without side effects beyond
// nothing: no analysis row, no signal.
func (x *Extractor) Extract(ctx context.Context, post model.RawPost) (*model.Signal, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PostID:   logger.Ptr(post.ID),
		Platform: logger.Ptr(post.Platform),
	})

	result, err := x.analyzer.Analyze(ctx, post.Content, post.Metrics)
	if err != nil {
		return nil, err
	}

	keywords := NormalizeKeywords(result.Keywords)

	analysis := &model.PostAnalysis{
		ID:               id.New(),
		RawPostID:        post.ID,
		ProblemSummary:   result.ProblemSummary,
		PainSeverity:     result.PainSeverity,
		WillingnessToPay: result.WillingnessToPay,
		ProductCategory:  result.ProductCategory,
		Keywords:         keywords,
	}
	if err := x.analyses.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("persisting analysis: %w", err)
	}

	if result.ProductCategory == model.CategoryNone || result.PainSeverity < x.cfg.MinPainSeverity {
		slog.DebugContext(ctx, "post below signal threshold",
			"pain_severity", result.PainSeverity,
			"category", result.ProductCategory)
		return nil, nil
	}

	return &model.Signal{
		RawPostID:        post.ID,
		ProblemSummary:   result.ProblemSummary,
		PainSeverity:     result.PainSeverity,
		WillingnessToPay: result.WillingnessToPay,
		Category:         result.ProductCategory,
		Keywords:         keywords,
		ScrapedAt:        post.ScrapedAt,
	}, nil
}

// NormalizeKeywords lowercases, trims, and dedupes, preserving first-seen order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
