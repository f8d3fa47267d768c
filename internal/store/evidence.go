package store

import (
	"context"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/internal/model"
)

type evidenceStore struct {
	db DBTX
}

func (s *evidenceStore) CreateIfAbsent(ctx context.Context, ev *model.Evidence) (bool, error) {
	if ev.ID == 0 {
		ev.ID = id.New()
	}
	tag, err := s.db.Exec(ctx, `
		INSERT INTO evidence (id, opportunity_id, raw_post_id, signal_type, weight)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (opportunity_id, raw_post_id, signal_type) DO NOTHING`,
		ev.ID, ev.OpportunityID, ev.RawPostID, string(ev.SignalType), ev.Weight)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *evidenceStore) CountDistinctPosts(ctx context.Context, opportunityID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT raw_post_id) FROM evidence WHERE opportunity_id = $1`,
		opportunityID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *evidenceStore) ListByOpportunity(ctx context.Context, opportunityID int64) ([]model.Evidence, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, opportunity_id, raw_post_id, signal_type, weight, created_at
		FROM evidence
		WHERE opportunity_id = $1
		ORDER BY created_at ASC, id ASC`, opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evidence []model.Evidence
	for rows.Next() {
		var ev model.Evidence
		if err := rows.Scan(&ev.ID, &ev.OpportunityID, &ev.RawPostID, &ev.SignalType, &ev.Weight, &ev.CreatedAt); err != nil {
			return nil, err
		}
		evidence = append(evidence, ev)
	}
	return evidence, rows.Err()
}

func (s *evidenceStore) ListRecords(ctx context.Context, opportunityID int64) ([]model.EvidenceRecord, error) {
	// Each evidence row is joined with the newest analysis of its post,
	// so re-analysis is reflected on the next rescore.
	rows, err := s.db.Query(ctx, `
		SELECT e.id, e.opportunity_id, e.raw_post_id, e.signal_type, e.weight, e.created_at,
			a.pain_severity, a.willingness_to_pay, p.scraped_at
		FROM evidence e
		JOIN raw_posts p ON p.id = e.raw_post_id
		JOIN LATERAL (
			SELECT pain_severity, willingness_to_pay
			FROM post_analyses
			WHERE raw_post_id = e.raw_post_id
			ORDER BY analyzed_at DESC, id DESC
			LIMIT 1
		) a ON TRUE
		WHERE e.opportunity_id = $1
		ORDER BY e.created_at ASC, e.id ASC`, opportunityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.EvidenceRecord
	for rows.Next() {
		var r model.EvidenceRecord
		if err := rows.Scan(&r.ID, &r.OpportunityID, &r.RawPostID, &r.SignalType, &r.Weight, &r.CreatedAt,
			&r.PainSeverity, &r.WillingnessToPay, &r.PostScrapedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
