package bank

import (
	"fmt"
	"strings"
)

// ValidationError reports a single malformed question record. The record is
// skipped, not fatal to the file load.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "bank: invalid question: " + e.Reason }

// CountMismatch is a manifest/content inconsistency: a child declared one
// question count but its file validated to another.
type CountMismatch struct {
	File     string
	Expected int
	Actual   int
}

func (e CountMismatch) Error() string {
	return fmt.Sprintf("bank: %s: declared %d questions, loaded %d", e.File, e.Expected, e.Actual)
}

// DuplicateID is a question identifier that appears in more than one place.
type DuplicateID struct {
	ID    string
	Files []string
}

func (e DuplicateID) Error() string {
	return fmt.Sprintf("bank: duplicate id %q in %s", e.ID, strings.Join(e.Files, ", "))
}

// LoadError aggregates every consistency finding from a bank load so a
// content maintainer can fix all of them in one pass. LoadBank returns it
// alongside the partially valid bank; callers choose degrade or abort.
type LoadError struct {
	Mismatches []CountMismatch
	Duplicates []DuplicateID
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bank: %d consistency error(s)", len(e.Mismatches)+len(e.Duplicates))
	for _, m := range e.Mismatches {
		b.WriteString("\n  ")
		b.WriteString(m.Error())
	}
	for _, d := range e.Duplicates {
		b.WriteString("\n  ")
		b.WriteString(d.Error())
	}
	return b.String()
}
