package retrieval

// MMRSelect picks up to k candidates by Maximal Marginal Relevance: the
// highest fused score first, then greedily the candidate maximizing
// lambda*fused - (1-lambda)*maxSimToSelected, where maxSimToSelected is the
// highest dense cosine similarity against every already-selected candidate,
// recomputed each round. Ties keep the first candidate in fused order.
//
// lambda=1.0 degenerates to plain top-k by fused score; lambda=0.0 maximizes
// novelty only. Cost is quadratic in len(scored) per selected item, so callers
// bound both the candidate count and k.
func MMRSelect(scored []ScoredCandidate, k int, lambda float64) []Candidate {
	if len(scored) == 0 || k <= 0 {
		return nil
	}

	rest := make([]ScoredCandidate, len(scored))
	copy(rest, scored)
	SortByFused(rest)

	selected := make([]ScoredCandidate, 0, min(k, len(rest)))
	for len(rest) > 0 && len(selected) < k {
		if len(selected) == 0 {
			selected = append(selected, rest[0])
			rest = rest[1:]
			continue
		}

		bestIdx := -1
		var bestVal float64
		for i, cand := range rest {
			var maxSim float64
			for j, s := range selected {
				sim := CosineSimilarity(cand.Embedding, s.Embedding)
				if j == 0 || sim > maxSim {
					maxSim = sim
				}
			}
			marginal := lambda*cand.FusedScore - (1-lambda)*maxSim
			if bestIdx < 0 || marginal > bestVal {
				bestIdx, bestVal = i, marginal
			}
		}

		selected = append(selected, rest[bestIdx])
		rest = append(rest[:bestIdx], rest[bestIdx+1:]...)
	}

	out := make([]Candidate, len(selected))
	for i, s := range selected {
		out[i] = s.Candidate
	}
	return out
}

// TopK returns the first min(k, n) candidates by fused score, the degenerate
// selection used when diversification is disabled.
func TopK(scored []ScoredCandidate, k int) []Candidate {
	if len(scored) == 0 || k <= 0 {
		return nil
	}

	sorted := make([]ScoredCandidate, len(scored))
	copy(sorted, scored)
	SortByFused(sorted)

	if k > len(sorted) {
		k = len(sorted)
	}
	out := make([]Candidate, k)
	for i := 0; i < k; i++ {
		out[i] = sorted[i].Candidate
	}
	return out
}
