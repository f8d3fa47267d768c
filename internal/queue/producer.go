package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// PipelineRunMessage triggers one pipeline batch on the worker.
type PipelineRunMessage struct {
	RequestedBy string // "ingest", "admin", "schedule"
	MaxPosts    int    // 0 = worker default
	TraceID     *string
	Attempt     int
}

type Producer interface {
	Enqueue(ctx context.Context, msg PipelineRunMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg PipelineRunMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":    string(TaskTypePipelineRun),
		"requested_by": msg.RequestedBy,
		"attempt":      attempt,
	}

	if msg.MaxPosts > 0 {
		fields["max_posts"] = msg.MaxPosts
	}
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue pipeline run: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued pipeline run", "requested_by", msg.RequestedBy, "max_posts", msg.MaxPosts, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
