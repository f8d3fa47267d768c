package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"gapradar.app/engine/internal/http/dto"
	"gapradar.app/engine/internal/queue"
	"gapradar.app/engine/internal/store"
)

// AdminHandler exposes operational endpoints: manual pipeline triggers,
// opportunity archival and scraper freshness.
type AdminHandler struct {
	producer      queue.Producer
	opportunities store.OpportunityStore
	scraperRuns   store.ScraperRunStore
	apiKey        string
}

func NewAdminHandler(producer queue.Producer, opportunities store.OpportunityStore, scraperRuns store.ScraperRunStore, apiKey string) *AdminHandler {
	return &AdminHandler{
		producer:      producer,
		opportunities: opportunities,
		scraperRuns:   scraperRuns,
		apiKey:        apiKey,
	}
}

// RequireKey guards admin endpoints with a static API key.
func (h *AdminHandler) RequireKey(c *gin.Context) {
	if h.apiKey == "" || c.GetHeader("X-Admin-Key") != h.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

// RunPipeline enqueues a pipeline trigger. The run itself happens on the
// worker; 202 means the trigger is durable, not that the batch finished.
func (h *AdminHandler) RunPipeline(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RunPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := queue.PipelineRunMessage{
		RequestedBy: "admin",
		MaxPosts:    req.MaxPosts,
	}
	if traceID := traceIDFrom(ctx); traceID != "" {
		msg.TraceID = &traceID
	}

	if err := h.producer.Enqueue(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue pipeline run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue pipeline run"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "enqueued"})
}

// ArchiveOpportunity takes an opportunity out of the clusterer's candidate
// set. Archived opportunities keep their evidence but never attract new
// signals.
func (h *AdminHandler) ArchiveOpportunity(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.opportunities.Archive(ctx, oppID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to archive opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive opportunity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

func (h *AdminHandler) ListScraperRuns(c *gin.Context) {
	ctx := c.Request.Context()

	runs, err := h.scraperRuns.ListLatest(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list scraper runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scraper runs"})
		return
	}

	c.JSON(http.StatusOK, dto.ScraperRunsResponse{Runs: runs})
}

func traceIDFrom(ctx context.Context) string {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
