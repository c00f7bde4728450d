package service

import (
	"context"

	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/pkg/embedding"
	"docuchat-be/pkg/retrieval"

	"github.com/google/uuid"
)

// chunkStore adapts the document chunk repository to the engine's
// CandidateStore contract.
type chunkStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func newChunkStore(uowFactory unitofwork.RepositoryFactory) retrieval.CandidateStore {
	return &chunkStore{uowFactory: uowFactory}
}

func (s *chunkStore) CandidatesByUser(ctx context.Context, userID uuid.UUID) ([]retrieval.Candidate, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chunks, err := uow.DocumentChunkRepository().FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := make([]retrieval.Candidate, len(chunks))
	for i, c := range chunks {
		candidates[i] = retrieval.Candidate{
			ID:        c.Id.String(),
			Text:      c.Text,
			Embedding: c.Embedding,
			FileName:  c.FileName,
			Page:      c.Page,
		}
	}
	return candidates, nil
}

func (s *chunkStore) LexicalScores(ctx context.Context, userID uuid.UUID, query string, limit int) (map[string]float64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hits, err := uow.DocumentChunkRepository().SearchLexical(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.ChunkId.String()] = h.Score
	}
	return scores, nil
}

// providerEmbedder adapts an EmbeddingProvider to the engine's Embedder
// contract. The provider API is synchronous; ctx only gates the call start.
type providerEmbedder struct {
	provider embedding.EmbeddingProvider
}

func newProviderEmbedder(provider embedding.EmbeddingProvider) retrieval.Embedder {
	return &providerEmbedder{provider: provider}
}

func (e *providerEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := e.provider.Generate(text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}
