package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gapradar.app/engine/internal/http/dto"
	"gapradar.app/engine/internal/model"
	"gapradar.app/engine/internal/store"
)

// OpportunityHandler serves the read-only dashboard API. Scores are served
// exactly as persisted; nothing is recomputed on the read path.
type OpportunityHandler struct {
	opportunities store.OpportunityStore
	evidence      store.EvidenceStore
	competitors   store.CompetitorListingStore
}

func NewOpportunityHandler(opportunities store.OpportunityStore, evidence store.EvidenceStore, competitors store.CompetitorListingStore) *OpportunityHandler {
	return &OpportunityHandler{
		opportunities: opportunities,
		evidence:      evidence,
		competitors:   competitors,
	}
}

func (h *OpportunityHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListOpportunitiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opps, err := h.opportunities.List(ctx, store.ListOpportunitiesFilter{
		Status:        model.OpportunityStatus(query.Status),
		Category:      model.ProductCategory(query.Category),
		MinConfidence: query.MinConfidence,
		Limit:         query.Limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list opportunities", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list opportunities"})
		return
	}

	c.JSON(http.StatusOK, dto.OpportunitiesResponse{Opportunities: opps})
}

func (h *OpportunityHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := parseID(c)
	if !ok {
		return
	}

	opp, err := h.opportunities.GetByID(ctx, oppID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "opportunity not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to get opportunity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get opportunity"})
		return
	}

	c.JSON(http.StatusOK, opp)
}

func (h *OpportunityHandler) ListEvidence(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := parseID(c)
	if !ok {
		return
	}

	evidence, err := h.evidence.ListByOpportunity(ctx, oppID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list evidence", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list evidence"})
		return
	}

	c.JSON(http.StatusOK, dto.EvidenceResponse{Evidence: evidence})
}

func (h *OpportunityHandler) ListCompetitors(c *gin.Context) {
	ctx := c.Request.Context()

	oppID, ok := parseID(c)
	if !ok {
		return
	}

	listings, err := h.competitors.ListByOpportunity(ctx, oppID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list competitors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list competitors"})
		return
	}

	c.JSON(http.StatusOK, dto.CompetitorsResponse{Competitors: listings})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid opportunity id"})
		return 0, false
	}
	return id, true
}
