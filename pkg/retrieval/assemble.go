package retrieval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// fragmentSeparator joins fragment texts inside the evidence body.
const fragmentSeparator = "\n\n---\n\n"

// EvidenceBlock is the citation-tagged evidence fed into the prompt.
type EvidenceBlock struct {
	Header string
	Body   string
}

// AssembleContext serializes the selected fragments into an evidence block.
// The header names the file of the first selected fragment plus the distinct
// pages across the whole selection, sorted ascending ("?" when no fragment
// carries a page). The body keeps selection order, not page order.
//
// The single-file header assumes one logical source per selection; callers
// that allow multi-document selections should attribute per fragment instead
// (see FragmentCitations).
func AssembleContext(selected []Candidate) EvidenceBlock {
	if len(selected) == 0 {
		return EvidenceBlock{}
	}

	fileName := selected[0].FileName
	if fileName == "" {
		fileName = "unknown"
	}

	pageSet := make(map[int]struct{})
	for _, c := range selected {
		if c.Page != nil {
			pageSet[*c.Page] = struct{}{}
		}
	}

	var pages []string
	if len(pageSet) == 0 {
		pages = []string{"?"}
	} else {
		nums := make([]int, 0, len(pageSet))
		for p := range pageSet {
			nums = append(nums, p)
		}
		sort.Ints(nums)
		pages = make([]string, len(nums))
		for i, p := range nums {
			pages[i] = strconv.Itoa(p)
		}
	}

	texts := make([]string, len(selected))
	for i, c := range selected {
		texts[i] = c.Text
	}

	return EvidenceBlock{
		Header: fmt.Sprintf("[file:%s pages:%s]", fileName, strings.Join(pages, ",")),
		Body:   strings.Join(texts, fragmentSeparator),
	}
}

// FragmentCitation attributes a single selected fragment to its source.
type FragmentCitation struct {
	FragmentID string
	FileName   string
	Page       *int
}

// FragmentCitations returns per-fragment attribution in selection order, the
// unambiguous counterpart of the aggregate evidence header.
func FragmentCitations(selected []Candidate) []FragmentCitation {
	out := make([]FragmentCitation, len(selected))
	for i, c := range selected {
		out[i] = FragmentCitation{
			FragmentID: c.ID,
			FileName:   c.FileName,
			Page:       c.Page,
		}
	}
	return out
}
