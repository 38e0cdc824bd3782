// Package uploads serves thumbnail image uploads backing the create-video
// form; the returned URL is what callers submit as thumbnailUrl.
package uploads

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-video/catalog-backend/pkg/response"
	"github.com/aura-video/catalog-backend/pkg/storage"
)

// Handler handles thumbnail upload endpoints.
type Handler struct {
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an upload handler. s3 may be nil when storage is not
// configured; the endpoint then answers 503.
func NewHandler(s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{s3: s3, logger: logger}
}

// UploadThumbnail handles POST /uploads/thumbnail (multipart field "file").
func (h *Handler) UploadThumbnail(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "thumbnail storage is not configured")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxThumbnailSize {
		response.BadRequest(c, "thumbnail exceeds the 5MB limit")
		return
	}

	url, err := h.s3.UploadThumbnail(
		c.Request.Context(),
		file,
		header.Header.Get("Content-Type"),
		header.Filename,
	)
	if err != nil {
		h.logger.Error("thumbnail upload", zap.Error(err))
		response.BadRequest(c, "could not store thumbnail: unsupported type or storage error")
		return
	}

	response.Created(c, gin.H{"url": url})
}
