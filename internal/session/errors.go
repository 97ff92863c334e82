package session

import "errors"

// Sentinel errors for session control flow. These indicate misuse by the
// caller (a UI bug), never a data problem; check with errors.Is.
var (
	ErrEmptySubset       = errors.New("session: empty question subset")
	ErrAlreadyAnswered   = errors.New("session: question already answered")
	ErrInvalidTransition = errors.New("session: invalid state transition")
	ErrOutOfRange        = errors.New("session: no current question")
)
