package retrieval

// Candidate is one indexed fragment of a user's documents, as returned by the
// candidate store. It is immutable for the duration of a retrieval call.
type Candidate struct {
	ID        string
	Text      string
	Embedding []float32
	FileName  string
	Page      *int
}

// ScoredCandidate carries a candidate through the scoring pipeline.
// SparseNorm defaults to 0 for candidates absent from the lexical result set.
type ScoredCandidate struct {
	Candidate

	DenseScore float64
	HasSparse  bool
	SparseNorm float64
	FusedScore float64
}

// Turn is a single conversation turn, oldest-first by Sequence.
type Turn struct {
	Role     string // "user" | "assistant"
	Content  string
	Sequence int
}

// Params are the caller-supplied retrieval knobs.
type Params struct {
	TopK   int
	Alpha  float64 // blend weight: 1.0 = dense only, 0.0 = sparse only
	UseMMR bool
	Lambda float64 // MMR trade-off: 1.0 = relevance only, 0.0 = novelty only
}

// DefaultParams returns the default retrieval configuration.
func DefaultParams() Params {
	return Params{
		TopK:   5,
		Alpha:  0.7,
		UseMMR: true,
		Lambda: 0.7,
	}
}
