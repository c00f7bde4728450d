package retrieval

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxLexicalHits caps the sparse result set per query.
const maxLexicalHits = 100

// CandidateStore supplies a user's full candidate set and lexical scores.
type CandidateStore interface {
	// CandidatesByUser returns every indexed fragment owned by the user.
	CandidatesByUser(ctx context.Context, userID uuid.UUID) ([]Candidate, error)

	// LexicalScores returns raw full-text relevance per fragment id for the
	// query, descending by score, at most limit entries.
	LexicalScores(ctx context.Context, userID uuid.UUID, query string, limit int) (map[string]float64, error)
}

// Embedder computes the query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Selection is the outcome of one retrieval call.
type Selection struct {
	// Fragments is the diversified selection, relevance-then-diversity order.
	Fragments []Candidate

	// Scored is the full fused candidate set, descending by fused score.
	Scored []ScoredCandidate

	// Evidence is the citation-tagged block for prompting.
	Evidence EvidenceBlock
}

// Engine turns a standalone question into a deduplicated, diverse set of
// evidence fragments. All scoring stages are pure; the only external calls are
// the candidate load, the query embedding, and the lexical search, each of
// which fails as a CollaboratorError.
type Engine struct {
	store    CandidateStore
	embedder Embedder
	logger   *zap.Logger
}

func NewEngine(store CandidateStore, embedder Embedder, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve runs the full pipeline: dense scoring, sparse normalization,
// weighted fusion, breadth resolution and diversified selection.
// Deterministic for identical inputs.
func (e *Engine) Retrieve(ctx context.Context, userID uuid.UUID, question string, p Params) (*Selection, error) {
	candidates, err := e.store.CandidatesByUser(ctx, userID)
	if err != nil {
		return nil, &CollaboratorError{Op: "candidate load", Err: err}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	queryVec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, &CollaboratorError{Op: "query embedding", Err: err}
	}

	rawSparse, err := e.store.LexicalScores(ctx, userID, question, maxLexicalHits)
	if err != nil {
		return nil, &CollaboratorError{Op: "lexical search", Err: err}
	}

	dense := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		if !hasUsableEmbedding(c) {
			continue
		}
		dense[c.ID] = CosineSimilarity(queryVec, c.Embedding)
	}

	scored := Fuse(candidates, dense, MinMaxNormalize(rawSparse), p.Alpha)
	SortByFused(scored)

	k := ResolveK(question, p.TopK)

	var fragments []Candidate
	if p.UseMMR {
		fragments = MMRSelect(scored, k, p.Lambda)
	} else {
		fragments = TopK(scored, k)
	}
	if len(fragments) == 0 {
		return nil, ErrEmptySelection
	}

	e.logger.Debug("retrieval completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("dense_scored", len(dense)),
		zap.Int("sparse_hits", len(rawSparse)),
		zap.Int("resolved_k", k),
		zap.Int("selected", len(fragments)),
		zap.Bool("mmr", p.UseMMR),
	)

	return &Selection{
		Fragments: fragments,
		Scored:    scored,
		Evidence:  AssembleContext(fragments),
	}, nil
}
