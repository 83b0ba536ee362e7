package chat

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/pkg/response"
)

// ArchiveEnqueuer schedules a history snapshot (implemented by queue.Queue).
type ArchiveEnqueuer interface {
	EnqueueArchive(ctx context.Context, reason string) (string, error)
}

// Handler serves chat history over HTTP.
type Handler struct {
	gw       *Gateway
	archiver ArchiveEnqueuer
	logger   *zap.Logger
}

// NewHandler creates a chat HTTP handler. archiver may be nil when Redis is not configured.
func NewHandler(gw *Gateway, archiver ArchiveEnqueuer, logger *zap.Logger) *Handler {
	return &Handler{gw: gw, archiver: archiver, logger: logger}
}

// List handles GET /api/messages?q= (full history, or search when q is set).
func (h *Handler) List(c *gin.Context) {
	list, err := h.gw.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logger.Error("list messages", zap.Error(err))
		response.Internal(c, "failed to load messages")
		return
	}
	response.OK(c, gin.H{"messages": list, "count": len(list)})
}

// Archive handles POST /api/archive (enqueue a history snapshot to object storage).
func (h *Handler) Archive(c *gin.Context) {
	if h.archiver == nil {
		response.ServiceUnavailable(c, "archiving is not configured")
		return
	}
	jobID, err := h.archiver.EnqueueArchive(c.Request.Context(), "manual")
	if err != nil {
		h.logger.Error("enqueue archive", zap.Error(err))
		response.Internal(c, "failed to enqueue archive")
		return
	}
	response.Created(c, gin.H{"job_id": jobID})
}
