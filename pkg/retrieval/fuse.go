package retrieval

import "sort"

// Fuse blends dense and normalized sparse scores into one fused score per
// candidate: fused = alpha*dense + (1-alpha)*sparseNorm. Candidates with
// neither a dense score nor a sparse hit are dropped from the scored set.
// Output preserves the input candidate order; sorting is the caller's job.
func Fuse(candidates []Candidate, dense map[string]float64, sparseNorm map[string]float64, alpha float64) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		d, hasDense := dense[c.ID]
		s, hasSparse := sparseNorm[c.ID]
		if !hasDense && !hasSparse {
			continue
		}

		sc := ScoredCandidate{
			Candidate:  c,
			DenseScore: d,
			HasSparse:  hasSparse,
			SparseNorm: s,
		}
		sc.FusedScore = alpha*sc.DenseScore + (1-alpha)*sc.SparseNorm
		scored = append(scored, sc)
	}
	return scored
}

// SortByFused orders scored candidates descending by fused score.
// The sort is stable so ties keep their original retrieval order, which in
// turn makes the diversified selection deterministic for identical inputs.
func SortByFused(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FusedScore > scored[j].FusedScore
	})
}
