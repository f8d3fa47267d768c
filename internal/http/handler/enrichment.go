package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gapradar.app/engine/internal/http/dto"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/store"
)

// EnrichmentHandler accepts market context from the enrichment scrapers:
// market snapshots, competitor listings and community signal volumes.
// Everything is keyed by an existing opportunity.
type EnrichmentHandler struct {
	opportunities store.OpportunityStore
	market        store.MarketDataStore
	competitors   store.CompetitorListingStore
	signals       store.CommunitySignalStore
}

func NewEnrichmentHandler(opportunities store.OpportunityStore, market store.MarketDataStore, competitors store.CompetitorListingStore, signals store.CommunitySignalStore) *EnrichmentHandler {
	return &EnrichmentHandler{
		opportunities: opportunities,
		market:        market,
		competitors:   competitors,
		signals:       signals,
	}
}

func (h *EnrichmentHandler) UpsertMarketSnapshot(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := h.resolveOpportunity(c)
	if !ok {
		return
	}

	var req dto.MarketSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot := model.MarketDataSnapshot{
		OpportunityID: oppID,
		MarketSize:    req.MarketSize,
		GrowthRate:    req.GrowthRate,
		Source:        req.Source,
	}
	if err := h.market.Upsert(ctx, &snapshot); err != nil {
		slog.ErrorContext(ctx, "failed to store market snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store market snapshot"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *EnrichmentHandler) UpsertCompetitor(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := h.resolveOpportunity(c)
	if !ok {
		return
	}

	var req dto.CompetitorListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing := model.CompetitorListing{
		OpportunityID: oppID,
		Name:          req.Name,
		URL:           req.URL,
		Price:         req.Price,
		Rating:        req.Rating,
		ReviewCount:   req.ReviewCount,
		Source:        req.Source,
	}
	if err := h.competitors.Upsert(ctx, &listing); err != nil {
		slog.ErrorContext(ctx, "failed to store competitor listing", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store competitor listing"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *EnrichmentHandler) UpsertCommunitySignal(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := h.resolveOpportunity(c)
	if !ok {
		return
	}

	var req dto.CommunitySignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot := model.CommunitySignalSnapshot{
		OpportunityID:   oppID,
		Platform:        req.Platform,
		Mentions:        req.Mentions,
		EngagementScore: req.EngagementScore,
	}
	if err := h.signals.Upsert(ctx, &snapshot); err != nil {
		slog.ErrorContext(ctx, "failed to store community signal", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store community signal"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *EnrichmentHandler) GetCommunitySignal(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := parseID(c)
	if !ok {
		return
	}

	platform := c.Query("platform")
	if platform == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform is required"})
		return
	}

	snapshot, err := h.signals.GetLatestByOpportunity(ctx, oppID, platform)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no community signal recorded"})
			return
		}
		slog.ErrorContext(ctx, "failed to get community signal", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get community signal"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// resolveOpportunity parses the :id param and rejects writes against
// opportunities that do not exist.
func (h *EnrichmentHandler) resolveOpportunity(c *gin.Context) (int64, bool) {
	ctx := c.Request.Context()

	oppID, ok := parseID(c)
	if !ok {
		return 0, false
	}

	if _, err := h.opportunities.GetByID(ctx, oppID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
			return 0, false
		}
		slog.ErrorContext(ctx, "failed to get opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get opportunity"})
		return 0, false
	}
	return oppID, true
}
