package store

import (
	"context"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/internal/model"
)

type scraperRunStore struct {
	db DBTX
}

func (s *scraperRunStore) RecordRun(ctx context.Context, name string, success bool, errMsg *string, itemsProcessed int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO scraper_runs (id, scraper_name, success, error, items_processed)
		VALUES ($1, $2, $3, $4, $5)`,
		id.New(), name, success, errMsg, itemsProcessed)
	return err
}

func (s *scraperRunStore) ListLatest(ctx context.Context) ([]model.ScraperRun, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (scraper_name)
			id, scraper_name, success, error, items_processed, ran_at
		FROM scraper_runs
		ORDER BY scraper_name, ran_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.ScraperRun
	for rows.Next() {
		var r model.ScraperRun
		if err := rows.Scan(&r.ID, &r.ScraperName, &r.Success, &r.Error, &r.ItemsProcessed, &r.RanAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
