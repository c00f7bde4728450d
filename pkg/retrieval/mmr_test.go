package retrieval

import (
	"testing"
)

func scoredFixture() []ScoredCandidate {
	// Two near-duplicates (a1, a2) and one distinct candidate (b).
	return []ScoredCandidate{
		{Candidate: Candidate{ID: "a1", Embedding: []float32{1, 0}}, FusedScore: 0.9},
		{Candidate: Candidate{ID: "a2", Embedding: []float32{0.999, 0.04}}, FusedScore: 0.85},
		{Candidate: Candidate{ID: "b", Embedding: []float32{0, 1}}, FusedScore: 0.5},
	}
}

func ids(selected []Candidate) []string {
	out := make([]string, len(selected))
	for i, c := range selected {
		out[i] = c.ID
	}
	return out
}

func TestMMRSelectLambdaOneEqualsTopK(t *testing.T) {
	scored := scoredFixture()

	mmr := MMRSelect(scored, 2, 1.0)
	top := TopK(scored, 2)

	if len(mmr) != len(top) {
		t.Fatalf("MMR returned %d, TopK returned %d", len(mmr), len(top))
	}
	for i := range mmr {
		if mmr[i].ID != top[i].ID {
			t.Errorf("position %d: MMR %q, TopK %q", i, mmr[i].ID, top[i].ID)
		}
	}
}

func TestMMRSelectPrefersDiversity(t *testing.T) {
	scored := scoredFixture()

	// With a strong novelty weight the near-duplicate a2 loses to b even
	// though a2 has a higher fused score.
	selected := MMRSelect(scored, 2, 0.3)

	got := ids(selected)
	if got[0] != "a1" {
		t.Fatalf("first pick = %q, want highest fused a1", got[0])
	}
	if got[1] != "b" {
		t.Errorf("second pick = %q, want diverse candidate b", got[1])
	}
}

func TestMMRSelectBounds(t *testing.T) {
	scored := scoredFixture()

	tests := []struct {
		name    string
		k       int
		wantLen int
	}{
		{"k greater than n", 10, 3},
		{"k equals n", 3, 3},
		{"k one", 1, 1},
		{"k zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := MMRSelect(scored, tt.k, 0.7)
			if len(selected) != tt.wantLen {
				t.Fatalf("MMRSelect(k=%d) returned %d, want %d", tt.k, len(selected), tt.wantLen)
			}

			seen := make(map[string]bool)
			for _, c := range selected {
				if seen[c.ID] {
					t.Errorf("duplicate selection of %q", c.ID)
				}
				seen[c.ID] = true
			}
		})
	}
}

func TestMMRSelectDoesNotMutateInput(t *testing.T) {
	scored := scoredFixture()
	originalOrder := []string{scored[0].ID, scored[1].ID, scored[2].ID}

	MMRSelect(scored, 2, 0.5)

	for i, want := range originalOrder {
		if scored[i].ID != want {
			t.Errorf("input order changed at %d: got %q, want %q", i, scored[i].ID, want)
		}
	}
}

func TestTopKTruncates(t *testing.T) {
	scored := scoredFixture()

	got := ids(TopK(scored, 2))
	want := []string{"a1", "a2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopK position %d = %q, want %q", i, got[i], want[i])
		}
	}
}
