package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gapradar.app/engine/common/logger"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/queue"
	"gapradar.app/engine/internal/store"
)

// ErrInvalidPost is returned when a scraper submission fails validation.
var ErrInvalidPost = errors.New("invalid post")

// Params is a scraper's submission of one post.
type Params struct {
	Platform    string
	PostID      string
	Content     string
	Author      string
	URL         string
	Metrics     map[string]float64
	ContentHash string // optional; computed when absent
	ScrapedAt   time.Time
}

// Result reports what Ingest did with the submission.
type Result struct {
	Post      model.RawPost
	Duplicate bool
}

// Service is the persistence boundary between scrapers and the pipeline.
// Duplicate submissions (same content hash) are no-ops; first-seen posts
// enqueue a pipeline trigger.
type Service struct {
	posts    store.PostStore
	producer queue.Producer
}

func New(posts store.PostStore, producer queue.Producer) *Service {
	return &Service{posts: posts, producer: producer}
}

func (s *Service) Ingest(ctx context.Context, p Params) (Result, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Platform:  logger.Ptr(p.Platform),
		Component: "engine.ingest",
	})

	if err := validate(p); err != nil {
		return Result{}, err
	}

	hash := p.ContentHash
	if hash == "" {
		hash = ContentHash(p.Platform, p.PostID, p.Content)
	}

	scrapedAt := p.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	post, created, err := s.posts.CreateOrGet(ctx, &model.RawPost{
		Platform:    p.Platform,
		PostID:      p.PostID,
		Content:     p.Content,
		Author:      p.Author,
		URL:         p.URL,
		Metrics:     p.Metrics,
		ContentHash: hash,
		ScrapedAt:   scrapedAt,
	})
	if err != nil {
		return Result{}, fmt.Errorf("storing post: %w", err)
	}

	if !created {
		slog.DebugContext(ctx, "duplicate post ignored",
			"post_id", post.ID,
			"content_hash", hash)
		return Result{Post: post, Duplicate: true}, nil
	}

	// Trigger delivery is best-effort: the post is durable either way and
	// the scheduled batch will pick it up.
	if err := s.producer.Enqueue(ctx, queue.PipelineRunMessage{RequestedBy: "ingest"}); err != nil {
		slog.WarnContext(ctx, "failed to enqueue pipeline trigger", "error", err)
	}

	slog.InfoContext(ctx, "post ingested",
		"post_id", post.ID,
		"content_length", len(p.Content))

	return Result{Post: post}, nil
}

func validate(p Params) error {
	if strings.TrimSpace(p.Platform) == "" {
		return fmt.Errorf("%w: platform is required", ErrInvalidPost)
	}
	if strings.TrimSpace(p.PostID) == "" {
		return fmt.Errorf("%w: post_id is required", ErrInvalidPost)
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidPost)
	}
	return nil
}

// ContentHash derives the dedupe key for a post. Stable across re-scrapes
// of unchanged content; a post edited at the source hashes differently and
// is treated as new content.
func ContentHash(platform, postID, content string) string {
	sum := sha256.Sum256([]byte(platform + ":" + postID + ":" + content))
	return hex.EncodeToString(sum[:])
}
