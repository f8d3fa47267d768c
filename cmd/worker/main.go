package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"gapradar.app/engine/common/id"
	"gapradar.app/engine/common/llm"
	"gapradar.app/engine/common/logger"
	"gapradar.app/engine/common/otel"
	"gapradar.app/engine/core/config"
	"gapradar.app/engine/core/db"
	"gapradar.app/engine/internal/analyzer"
	"gapradar.app/engine/internal/cluster"
	"gapradar.app/engine/internal/extractor"
	"gapradar.app/engine/internal/ledger"
	"gapradar.app/engine/internal/pipeline"
	"gapradar.app/engine/internal/queue"
	"gapradar.app/engine/internal/scoring"
	"gapradar.app/engine/internal/store"
	"gapradar.app/engine/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "engine worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	// Different node ID than the server so IDs never collide
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.RedisStream,
		Group:        cfg.Pipeline.RedisGroup,
		Consumer:     cfg.Pipeline.RedisConsumer,
		DLQStream:    cfg.Pipeline.RedisDLQStream,
		BatchSize:    1, // One batch trigger at a time
		Block:        5 * time.Second,
		MaxAttempts:  cfg.Pipeline.MaxAttempts,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	llmClient, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Pool())

	ext := extractor.New(
		analyzer.NewOpenAI(llmClient, analyzer.Config{Timeout: cfg.OpenAI.Timeout}),
		stores.Analyses(),
		extractor.Config{MinPainSeverity: cfg.Extractor.MinPainSeverity},
	)

	pipe := pipeline.New(
		ext,
		cluster.New(cluster.Config{
			KeywordWeight:       cfg.Cluster.KeywordWeight,
			CategoryWeight:      cfg.Cluster.CategoryWeight,
			SummaryWeight:       cfg.Cluster.SummaryWeight,
			AttachmentThreshold: cfg.Cluster.AttachmentThreshold,
		}),
		ledger.New(),
		scoring.New(cfg.Scoring),
		stores,
		pipeline.NewTxRunner(database),
		pipeline.NewLock(redisClient, cfg.Pipeline.LockKey, cfg.Pipeline.LockTTL),
		pipeline.Config{MaxPosts: cfg.Pipeline.MaxPosts},
	)

	w := worker.New(consumer, pipe, worker.Config{
		MaxAttempts: cfg.Pipeline.MaxAttempts,
	})

	reclaimer := worker.NewReclaimer(redisClient, worker.ReclaimerConfig{
		Stream:    cfg.Pipeline.RedisStream,
		Group:     cfg.Pipeline.RedisGroup,
		Consumer:  cfg.Pipeline.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	producer := queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default())

	scheduler := cron.New()
	if cfg.Pipeline.Schedule != "" {
		_, err := scheduler.AddFunc(cfg.Pipeline.Schedule, func() {
			if err := producer.Enqueue(ctx, queue.PipelineRunMessage{RequestedBy: "schedule"}); err != nil {
				slog.ErrorContext(ctx, "failed to enqueue scheduled pipeline run", "error", err)
			}
		})
		if err != nil {
			slog.ErrorContext(ctx, "invalid pipeline schedule", "schedule", cfg.Pipeline.Schedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		slog.InfoContext(ctx, "pipeline schedule active", "schedule", cfg.Pipeline.Schedule)
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Scheduler first so no new triggers land mid-shutdown
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
 ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
