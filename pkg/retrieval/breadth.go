package retrieval

import "strings"

// broadK is the widened fragment count used for broad questions.
const broadK = 10

var broadKeywords = []string{
	"overview",
	"about",
	"summary",
	"summarize",
	"explain",
	"what is this project",
}

// IsBroadQuestion classifies a question as broad when it is short (at most 6
// whitespace tokens) or contains one of a fixed set of summary-style keywords.
func IsBroadQuestion(question string) bool {
	ql := strings.ToLower(strings.TrimSpace(question))
	if len(strings.Fields(ql)) <= 6 {
		return true
	}
	for _, w := range broadKeywords {
		if strings.Contains(ql, w) {
			return true
		}
	}
	return false
}

// ResolveK widens the retrieval breadth for broad questions: those get a fixed
// breadth of 10 regardless of baseK, everything else keeps baseK.
func ResolveK(question string, baseK int) int {
	if IsBroadQuestion(question) {
		return broadK
	}
	return baseK
}
