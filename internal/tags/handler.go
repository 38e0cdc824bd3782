package tags

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-video/catalog-backend/pkg/response"
)

// Lister is the store capability behind GET /tags.
type Lister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// Handler handles tag HTTP endpoints.
type Handler struct {
	store  Lister
	logger *zap.Logger
}

// NewHandler creates a tag handler.
func NewHandler(store Lister, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /tags: every distinct tag name, sorted, for filter
// dropdowns and the create form.
func (h *Handler) List(c *gin.Context) {
	names, err := h.store.ListNames(c.Request.Context())
	if err != nil {
		h.logger.Error("list tags", zap.Error(err))
		response.Internal(c, "failed to list tags")
		return
	}
	response.OK(c, names)
}
