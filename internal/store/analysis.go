package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/internal/model"
)

type analysisStore struct {
	db DBTX
}

func (s *analysisStore) Create(ctx context.Context, analysis *model.PostAnalysis) error {
	if analysis.ID == 0 {
		analysis.ID = id.New()
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO post_analyses (id, raw_post_id, problem_summary, pain_severity, willingness_to_pay, product_category, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING analyzed_at`,
		analysis.ID, analysis.RawPostID, analysis.ProblemSummary, analysis.PainSeverity,
		analysis.WillingnessToPay, string(analysis.ProductCategory), analysis.Keywords,
	).Scan(&analysis.AnalyzedAt)
}

func (s *analysisStore) GetLatestByPost(ctx context.Context, rawPostID int64) (*model.PostAnalysis, error) {
	var a model.PostAnalysis
	err := s.db.QueryRow(ctx, `
		SELECT id, raw_post_id, problem_summary, pain_severity, willingness_to_pay, product_category, keywords, analyzed_at
		FROM post_analyses
		WHERE raw_post_id = $1
		ORDER BY analyzed_at DESC, id DESC
		LIMIT 1`, rawPostID,
	).Scan(&a.ID, &a.RawPostID, &a.ProblemSummary, &a.PainSeverity,
		&a.WillingnessToPay, &a.ProductCategory, &a.Keywords, &a.AnalyzedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
