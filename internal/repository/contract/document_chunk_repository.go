package contract

import (
	"context"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// LexicalHit is one full-text search result with its raw relevance score.
type LexicalHit struct {
	ChunkId uuid.UUID
	Score   float64
}

// DocumentInfo summarizes one indexed document for a user.
type DocumentInfo struct {
	FileName string
	Pages    int64
	Chunks   int64
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByFileName(ctx context.Context, userId uuid.UUID, fileName string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindAllByUser returns the user's full candidate set for one retrieval call.
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.DocumentChunk, error)

	// SearchLexical runs Postgres full-text search over the user's chunks,
	// descending by ts_rank, at most limit hits.
	SearchLexical(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*LexicalHit, error)

	// DistinctDocuments lists the user's indexed documents with chunk and page counts.
	DistinctDocuments(ctx context.Context, userId uuid.UUID) ([]*DocumentInfo, error)
}
