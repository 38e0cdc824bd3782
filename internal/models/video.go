package models

import (
	"time"

	"github.com/google/uuid"
)

// Video is the public shape of a catalog record. Tags are flattened tag
// names in the order they were attached to the video; a video with no tags
// carries an empty slice, never nil.
type Video struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     int       `json:"duration"` // seconds
	Views        int       `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Tags         []string  `json:"tags"`
}
