package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/internal/model"
)

type postStore struct {
	db DBTX
}

const postColumns = `id, platform, post_id, content, author, url, metrics, content_hash, processed, scraped_at, created_at`

func (s *postStore) CreateOrGet(ctx context.Context, post *model.RawPost) (model.RawPost, bool, error) {
	metrics, err := marshalMetrics(post.Metrics)
	if err != nil {
		return model.RawPost{}, false, err
	}

	postID := post.ID
	if postID == 0 {
		postID = id.New()
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO raw_posts (id, platform, post_id, content, author, url, metrics, content_hash, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (content_hash) DO NOTHING
		RETURNING `+postColumns,
		postID, post.Platform, post.PostID, post.Content, post.Author, post.URL,
		metrics, post.ContentHash, post.ScrapedAt)

	created, err := scanPost(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.RawPost{}, false, fmt.Errorf("inserting raw post: %w", err)
	}

	// Conflict: the post is already stored, return the existing row.
	existing, err := scanPost(s.db.QueryRow(ctx,
		`SELECT `+postColumns+` FROM raw_posts WHERE content_hash = $1`, post.ContentHash))
	if err != nil {
		return model.RawPost{}, false, fmt.Errorf("fetching deduped post: %w", err)
	}
	return existing, false, nil
}

func (s *postStore) GetByID(ctx context.Context, postID int64) (*model.RawPost, error) {
	post, err := scanPost(s.db.QueryRow(ctx,
		`SELECT `+postColumns+` FROM raw_posts WHERE id = $1`, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *postStore) ListUnprocessed(ctx context.Context, limit int32) ([]model.RawPost, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+postColumns+`
		FROM raw_posts
		WHERE processed = FALSE
		ORDER BY scraped_at ASC, id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.RawPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *postStore) MarkProcessed(ctx context.Context, postID int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE raw_posts SET processed = TRUE WHERE id = $1`, postID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (model.RawPost, error) {
	var p model.RawPost
	var metrics []byte
	err := row.Scan(&p.ID, &p.Platform, &p.PostID, &p.Content, &p.Author, &p.URL,
		&metrics, &p.ContentHash, &p.Processed, &p.ScrapedAt, &p.CreatedAt)
	if err != nil {
		return model.RawPost{}, err
	}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &p.Metrics); err != nil {
			return model.RawPost{}, fmt.Errorf("unmarshaling post metrics: %w", err)
		}
	}
	return p, nil
}

func marshalMetrics(m map[string]float64) ([]byte, error) {
	if m == nil {
		m = map[string]float64{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling post metrics: %w", err)
	}
	return data, nil
}
