package bank

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultExplanation fills in for questions whose source file has no
// explanation. Blank explanations are a tolerated data-entry gap, repaired
// silently during validation.
const DefaultExplanation = "No explanation provided."

// Question is the canonical, validated form of a question record.
// Immutable once the bank is loaded.
type Question struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Answer   []int    `json:"answer"` // sorted option indexes; len>1 means multi-select
	Exp      string   `json:"exp"`
	TestName string   `json:"testName"`
}

// MultiAnswer reports whether more than one option must be selected.
func (q Question) MultiAnswer() bool { return len(q.Answer) > 1 }

// RawQuestion is a question record as it appears in a question-set file,
// before validation.
type RawQuestion struct {
	ID       string    `json:"id"`
	Prompt   string    `json:"prompt"`
	Options  []string  `json:"options"`
	Answer   AnswerSet `json:"answer"`
	Exp      string    `json:"exp"`
	TestName string    `json:"testName"`
}

// AnswerSet decodes the correct-answer indicator, which source files write
// either as a bare index or as an array of indexes.
type AnswerSet []int

func (a *AnswerSet) UnmarshalJSON(b []byte) error {
	var single int
	if err := json.Unmarshal(b, &single); err == nil {
		*a = AnswerSet{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("answer must be an index or an array of indexes")
	}
	*a = AnswerSet(many)
	return nil
}

// Validate normalizes a raw record into a Question or rejects it with a
// *ValidationError. A blank explanation is repaired to DefaultExplanation,
// never rejected.
func Validate(raw RawQuestion) (Question, error) {
	if strings.TrimSpace(raw.ID) == "" {
		return Question{}, &ValidationError{Reason: "missing id"}
	}
	if len(raw.Options) < 2 {
		return Question{}, &ValidationError{Reason: fmt.Sprintf("%s: needs at least two options", raw.ID)}
	}
	if len(raw.Answer) == 0 {
		return Question{}, &ValidationError{Reason: fmt.Sprintf("%s: missing answer", raw.ID)}
	}
	answer := normalizeIndexes(raw.Answer)
	for _, idx := range answer {
		if idx < 0 || idx >= len(raw.Options) {
			return Question{}, &ValidationError{Reason: fmt.Sprintf("%s: answer index %d out of range", raw.ID, idx)}
		}
	}
	exp := raw.Exp
	if strings.TrimSpace(exp) == "" {
		exp = DefaultExplanation
	}
	return Question{
		ID:       raw.ID,
		Prompt:   raw.Prompt,
		Options:  raw.Options,
		Answer:   answer,
		Exp:      exp,
		TestName: raw.TestName,
	}, nil
}

func normalizeIndexes(in []int) []int {
	out := make([]int, 0, len(in))
	seen := map[int]struct{}{}
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
