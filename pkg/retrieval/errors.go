package retrieval

import (
	"errors"
	"fmt"
)

// ErrNoCandidates means the user has zero indexed content. This is a
// client-visible "nothing to retrieve" condition, not a server fault.
var ErrNoCandidates = errors.New("no indexed content for user")

// ErrEmptySelection means fusion and diversification produced zero fragments
// despite a non-empty candidate set.
var ErrEmptySelection = errors.New("retrieval selected no fragments")

// CollaboratorError wraps a failed call to an external collaborator
// (embedding provider, lexical index, candidate load). It is distinct from
// ErrNoCandidates so callers can tell "upload content" apart from "retry later".
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("retrieval collaborator %s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
