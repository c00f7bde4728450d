package retrieval

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestAssembleContext(t *testing.T) {
	tests := []struct {
		name       string
		selected   []Candidate
		wantHeader string
		wantBody   string
	}{
		{
			name:       "empty selection",
			selected:   nil,
			wantHeader: "",
			wantBody:   "",
		},
		{
			name: "single fragment with page",
			selected: []Candidate{
				{ID: "1", Text: "first", FileName: "doc.pdf", Page: intPtr(3)},
			},
			wantHeader: "[file:doc.pdf pages:3]",
			wantBody:   "first",
		},
		{
			name: "pages sorted and deduplicated",
			selected: []Candidate{
				{ID: "1", Text: "one", FileName: "doc.pdf", Page: intPtr(7)},
				{ID: "2", Text: "two", FileName: "doc.pdf", Page: intPtr(2)},
				{ID: "3", Text: "three", FileName: "doc.pdf", Page: intPtr(7)},
			},
			wantHeader: "[file:doc.pdf pages:2,7]",
			wantBody:   "one\n\n---\n\ntwo\n\n---\n\nthree",
		},
		{
			name: "no pages gets placeholder",
			selected: []Candidate{
				{ID: "1", Text: "body", FileName: "doc.pdf"},
			},
			wantHeader: "[file:doc.pdf pages:?]",
			wantBody:   "body",
		},
		{
			name: "missing file name",
			selected: []Candidate{
				{ID: "1", Text: "body", Page: intPtr(1)},
			},
			wantHeader: "[file:unknown pages:1]",
			wantBody:   "body",
		},
		{
			name: "header names first fragment's file",
			selected: []Candidate{
				{ID: "1", Text: "a", FileName: "first.pdf", Page: intPtr(1)},
				{ID: "2", Text: "b", FileName: "second.pdf", Page: intPtr(9)},
			},
			wantHeader: "[file:first.pdf pages:1,9]",
			wantBody:   "a\n\n---\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssembleContext(tt.selected)
			if got.Header != tt.wantHeader {
				t.Errorf("Header = %q, want %q", got.Header, tt.wantHeader)
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tt.wantBody)
			}
		})
	}
}

func TestAssembleContextKeepsSelectionOrder(t *testing.T) {
	selected := []Candidate{
		{ID: "1", Text: "later page first", FileName: "doc.pdf", Page: intPtr(9)},
		{ID: "2", Text: "earlier page second", FileName: "doc.pdf", Page: intPtr(1)},
	}

	got := AssembleContext(selected)
	if !strings.HasPrefix(got.Body, "later page first") {
		t.Errorf("body reordered fragments: %q", got.Body)
	}
}

func TestFragmentCitations(t *testing.T) {
	selected := []Candidate{
		{ID: "1", FileName: "a.pdf", Page: intPtr(2)},
		{ID: "2", FileName: "b.pdf"},
	}

	citations := FragmentCitations(selected)
	if len(citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(citations))
	}
	if citations[0].FragmentID != "1" || citations[0].FileName != "a.pdf" || *citations[0].Page != 2 {
		t.Errorf("unexpected first citation: %+v", citations[0])
	}
	if citations[1].FragmentID != "2" || citations[1].FileName != "b.pdf" || citations[1].Page != nil {
		t.Errorf("unexpected second citation: %+v", citations[1])
	}
}
