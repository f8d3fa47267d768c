package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gapradar.app/engine/internal/store"
)

// PostHandler serves the read side of raw posts: the drill-down from an
// evidence row to the post it came from and the analysis behind it.
type PostHandler struct {
	posts    store.PostStore
	analyses store.AnalysisStore
}

func NewPostHandler(posts store.PostStore, analyses store.AnalysisStore) *PostHandler {
	return &PostHandler{posts: posts, analyses: analyses}
}

func (h *PostHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	post, err := h.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to get post", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetAnalysis returns the newest analysis for a post. Analyses are
// append-only; older rows are never served here.
func (h *PostHandler) GetAnalysis(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	analysis, err := h.analyses.GetLatestByPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post has not been analyzed"})
			return
		}
		slog.ErrorContext(ctx, "failed to get analysis", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analysis"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func parsePostID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return 0, false
	}
	return id, true
}
