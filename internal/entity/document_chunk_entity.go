package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one indexed fragment of an uploaded document, together
// with its embedding. Chunks are written by the ingestion service; this
// service only reads them.
type DocumentChunk struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	FileName  string
	Page      *int
	Text      string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
