package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a globally shared label. Name is the natural key: lowercase and
// unique across the catalog. Tags are created on first use and never deleted.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
