package streams

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/internal/models"
	"github.com/chaines-io/chat-hub/pkg/response"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Lister returns recent sessions (implemented by *Repository).
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]models.BroadcastSession, error)
}

// Handler serves the broadcast session log.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates a broadcast session handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /api/broadcasts?limit=
func (h *Handler) List(c *gin.Context) {
	limit := defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	list, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list broadcast sessions", zap.Error(err))
		response.Internal(c, "failed to list broadcasts")
		return
	}
	response.OK(c, gin.H{"broadcasts": list, "count": len(list)})
}
