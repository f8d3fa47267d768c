package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gapradar.app/engine/internal/http/dto"
	"gapradar.app/engine/internal/ingest"
)

// IngestService is the slice of ingest.Service the handler needs.
type IngestService interface {
	Ingest(ctx context.Context, p ingest.Params) (ingest.Result, error)
}

type PostIngestHandler struct {
	service IngestService
}

func NewPostIngestHandler(service IngestService) *PostIngestHandler {
	return &PostIngestHandler{service: service}
}

func (h *PostIngestHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid ingest request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := ingest.Params{
		Platform:    req.Platform,
		PostID:      req.PostID,
		Content:     req.Content,
		Author:      req.Author,
		URL:         req.URL,
		Metrics:     req.Metrics,
		ContentHash: req.ContentHash,
	}
	if req.ScrapedAt != nil {
		params.ScrapedAt = *req.ScrapedAt
	}

	result, err := h.service.Ingest(ctx, params)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidPost) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to ingest post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest post"})
		return
	}

	c.JSON(http.StatusAccepted, dto.IngestPostResponse{
		RawPostID:  result.Post.ID,
		DedupeKey:  result.Post.ContentHash,
		Duplicated: result.Duplicate,
	})
}
