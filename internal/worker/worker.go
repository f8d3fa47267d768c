package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"gapradar.app/engine/common/logger"
	"gapradar.app/engine/internal/pipeline"
	"gapradar.app/engine/internal/queue"
)

// BatchRunner runs one pipeline batch. Mirrors pipeline.Pipeline - defined
// here so tests can swap it out.
type BatchRunner interface {
	RunBatch(ctx context.Context, maxPosts int) (pipeline.Report, error)
}

type Config struct {
	MaxAttempts int
}

// Worker consumes pipeline_run tasks and executes batches.
type Worker struct {
	consumer *queue.RedisConsumer
	runner   BatchRunner
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, runner BatchRunner, cfg Config) *Worker {
	return &Worker{
		consumer:  consumer,
		runner:    runner,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"requested_by", msg.RequestedBy)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// Exported so it can be reused by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.pipeline_run",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: logger.Ptr(msg.ID),
		Component: "engine.worker",
	})

	slog.InfoContext(ctx, "processing pipeline run",
		"requested_by", msg.RequestedBy,
		"max_posts", msg.MaxPosts,
		"attempt", msg.Attempt)

	report, err := w.runner.RunBatch(ctx, msg.MaxPosts)
	if err != nil {
		if errors.Is(err, pipeline.ErrPipelineBusy) {
			// Another runner holds the lease; its batch will pick up the
			// same unprocessed posts. Nothing to retry.
			slog.InfoContext(ctx, "pipeline busy, dropping trigger")
			return w.ack(ctx, msg)
		}
		sc.RecordError(err)
		return fmt.Errorf("running batch: %w", err)
	}

	slog.InfoContext(ctx, "pipeline run finished",
		"selected", report.Selected,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed)

	return w.ack(ctx, msg)
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) error {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Log but don't fail - message will be reclaimed but that's safe
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
