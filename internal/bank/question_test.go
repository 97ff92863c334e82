package bank_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/quizbook/quizbook/internal/bank"
)

func validRaw() bank.RawQuestion {
	return bank.RawQuestion{
		ID:      "q1",
		Prompt:  "Capital of France?",
		Options: []string{"Paris", "Rome", "Berlin"},
		Answer:  bank.AnswerSet{0},
		Exp:     "Paris has been the capital since 987.",
	}
}

func TestValidateOK(t *testing.T) {
	q, err := bank.Validate(validRaw())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if q.ID != "q1" || len(q.Options) != 3 || q.Exp == "" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if q.MultiAnswer() {
		t.Fatal("single-answer question reported as multi")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*bank.RawQuestion)
	}{
		{"missing id", func(r *bank.RawQuestion) { r.ID = "  " }},
		{"one option", func(r *bank.RawQuestion) { r.Options = []string{"only"} }},
		{"no options", func(r *bank.RawQuestion) { r.Options = nil }},
		{"no answer", func(r *bank.RawQuestion) { r.Answer = nil }},
		{"answer out of range", func(r *bank.RawQuestion) { r.Answer = bank.AnswerSet{3} }},
		{"negative answer", func(r *bank.RawQuestion) { r.Answer = bank.AnswerSet{-1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validRaw()
			tc.mutate(&raw)
			_, err := bank.Validate(raw)
			var ve *bank.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("want *ValidationError, got %v", err)
			}
		})
	}
}

func TestValidateRepairsBlankExplanation(t *testing.T) {
	for _, exp := range []string{"", "   ", "\t\n"} {
		raw := validRaw()
		raw.Exp = exp
		q, err := bank.Validate(raw)
		if err != nil {
			t.Fatalf("Validate with exp %q: %v", exp, err)
		}
		if q.Exp != bank.DefaultExplanation {
			t.Fatalf("exp %q: got %q, want placeholder", exp, q.Exp)
		}
	}

	// non-blank explanations pass through untouched
	raw := validRaw()
	q, err := bank.Validate(raw)
	if err != nil {
		t.Fatal(err)
	}
	if q.Exp != raw.Exp {
		t.Fatalf("non-blank exp changed: %q", q.Exp)
	}
}

func TestValidateNormalizesAnswer(t *testing.T) {
	raw := validRaw()
	raw.Answer = bank.AnswerSet{2, 0, 2}
	q, err := bank.Validate(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Answer) != 2 || q.Answer[0] != 0 || q.Answer[1] != 2 {
		t.Fatalf("answer not sorted/deduped: %v", q.Answer)
	}
	if !q.MultiAnswer() {
		t.Fatal("two-answer question not reported as multi")
	}
}

func TestAnswerSetDecodesScalarAndArray(t *testing.T) {
	var raw bank.RawQuestion
	if err := json.Unmarshal([]byte(`{"id":"a","options":["x","y"],"answer":1}`), &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw.Answer) != 1 || raw.Answer[0] != 1 {
		t.Fatalf("scalar answer: %v", raw.Answer)
	}
	if err := json.Unmarshal([]byte(`{"id":"a","options":["x","y"],"answer":[0,1]}`), &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw.Answer) != 2 {
		t.Fatalf("array answer: %v", raw.Answer)
	}
	if err := json.Unmarshal([]byte(`{"answer":"b"}`), &raw); err == nil {
		t.Fatal("string answer should not decode")
	}
}
