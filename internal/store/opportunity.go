package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/internal/model"
)

type opportunityStore struct {
	db DBTX
}

const opportunityColumns = `id, title, description, problem_summary, category, keywords,
	confidence_score, pain_severity, trend_score, timing_score, growth_pattern,
	evidence_count, status, detected_at, created_at, updated_at`

func (s *opportunityStore) Create(ctx context.Context, opp *model.Opportunity) error {
	if opp.ID == 0 {
		opp.ID = id.New()
	}
	if opp.Status == "" {
		opp.Status = model.OpportunityStatusActive
	}
	if opp.GrowthPattern == "" {
		opp.GrowthPattern = model.GrowthEmerging
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO opportunities (id, title, description, problem_summary, category, keywords,
			confidence_score, pain_severity, trend_score, timing_score, growth_pattern,
			evidence_count, status, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		opp.ID, opp.Title, opp.Description, opp.ProblemSummary, string(opp.Category), opp.Keywords,
		opp.ConfidenceScore, opp.PainSeverity, opp.TrendScore, opp.TimingScore, string(opp.GrowthPattern),
		opp.EvidenceCount, string(opp.Status), opp.DetectedAt,
	).Scan(&opp.CreatedAt, &opp.UpdatedAt)
}

func (s *opportunityStore) GetByID(ctx context.Context, oppID int64) (*model.Opportunity, error) {
	opp, err := scanOpportunity(s.db.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, oppID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &opp, nil
}

func (s *opportunityStore) ListOpen(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+opportunityColumns+`
		FROM opportunities
		WHERE status = 'active'
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

func (s *opportunityStore) List(ctx context.Context, filter ListOpportunitiesFilter) ([]model.Opportunity, error) {
	var conds []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.MinConfidence > 0 {
		args = append(args, filter.MinConfidence)
		conds = append(conds, fmt.Sprintf("confidence_score >= $%d", len(args)))
	}

	query := `SELECT ` + opportunityColumns + ` FROM opportunities`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY confidence_score DESC, id ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

func (s *opportunityStore) UpdateSnapshot(ctx context.Context, oppID int64, keywords []string, summary string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE opportunities
		SET keywords = $2, problem_summary = $3, updated_at = now()
		WHERE id = $1`, oppID, keywords, summary)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *opportunityStore) SetScores(ctx context.Context, oppID int64, scores model.Scores) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE opportunities
		SET confidence_score = $2, pain_severity = $3, trend_score = $4,
			timing_score = $5, growth_pattern = $6, updated_at = now()
		WHERE id = $1`,
		oppID, scores.Confidence, scores.PainSeverity, scores.TrendScore,
		scores.TimingScore, string(scores.GrowthPattern))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *opportunityStore) SetEvidenceCount(ctx context.Context, oppID int64, count int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE opportunities SET evidence_count = $2, updated_at = now() WHERE id = $1`,
		oppID, count)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *opportunityStore) Archive(ctx context.Context, oppID int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE opportunities SET status = 'archived', updated_at = now() WHERE id = $1`, oppID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOpportunity(row pgx.Row) (model.Opportunity, error) {
	var o model.Opportunity
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.ProblemSummary, &o.Category, &o.Keywords,
		&o.ConfidenceScore, &o.PainSeverity, &o.TrendScore, &o.TimingScore, &o.GrowthPattern,
		&o.EvidenceCount, &o.Status, &o.DetectedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Opportunity{}, err
	}
	return o, nil
}

func collectOpportunities(rows pgx.Rows) ([]model.Opportunity, error) {
	var opps []model.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}
