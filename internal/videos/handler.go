package videos

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/models"
	"github.com/aura-video/catalog-backend/pkg/response"
)

// creationFailedMessage is the generic message for store-level create
// failures. Field-level problems never reach the store.
const creationFailedMessage = "could not create the video; check that required fields are filled in correctly"

// Store is the persistence capability the handler needs.
type Store interface {
	List(ctx context.Context, crit criteria.ListCriteria) ([]models.Video, error)
	Create(ctx context.Context, in criteria.CreateInput) (*models.Video, error)
}

// Notifier pushes catalog invalidation events to connected clients.
type Notifier interface {
	VideosInvalidated()
}

// Handler handles video HTTP endpoints.
type Handler struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a video handler. notifier may be nil.
func NewHandler(store Store, notifier Notifier, logger *zap.Logger) *Handler {
	return &Handler{store: store, notifier: notifier, logger: logger}
}

// List handles GET /videos. Criteria come from the query string
// (search, tags, sort) and are normalized before hitting the store.
func (h *Handler) List(c *gin.Context) {
	crit := criteria.ParseListValues(c.Request.URL.Query())
	list, err := h.store.List(c.Request.Context(), crit)
	if err != nil {
		h.logger.Error("list videos", zap.Error(err))
		response.Internal(c, "failed to list videos")
		return
	}
	response.OK(c, list)
}

// Create handles POST /videos. Validation errors block the write entirely
// and report every offending field; store errors come back as a generic
// creation failure.
func (h *Handler) Create(c *gin.Context) {
	var in criteria.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		var verr *criteria.ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(c, verr.Fields)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	video, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		var verr *criteria.ValidationError
		if errors.As(err, &verr) {
			response.ValidationFailed(c, verr.Fields)
			return
		}
		h.logger.Error("create video", zap.Error(err))
		response.Internal(c, creationFailedMessage)
		return
	}

	if h.notifier != nil {
		h.notifier.VideosInvalidated()
	}
	response.Created(c, video)
}
