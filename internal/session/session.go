// Package session drives a single quiz attempt over a chosen subset of the
// question catalog: ordering, answer submission, scoring, and the summary
// that feeds the wrong-book registry.
//
// A session assumes serialized calls from one caller (the UI issues one
// action at a time), so it carries no locking.
package session

import (
	"math/rand"
	"time"

	"github.com/quizbook/quizbook/internal/bank"
)

// Order controls question sequencing.
type Order string

const (
	OrderSequential Order = "sequential" // preserve catalog order
	OrderShuffled   Order = "shuffled"   // seeded permutation, reproducible
)

// Config configures a new session. A zero Seed is replaced with a
// time-derived one; the effective seed is readable via Seed() so a shuffled
// session can be replayed.
type Config struct {
	Order        Order
	Seed         int64
	TimeLimitSec int // 0 = untimed; the engine records time but never self-expires
}

// State is the session lifecycle state.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Answer is the recorded, write-once outcome for one question.
type Answer struct {
	Selection []int `json:"selection"`
	Correct   bool  `json:"correct"`
}

// QuestionResult is one (question, correctness) pair of a summary, in
// session order.
type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}

// Summary is the frozen outcome of a completed session, the sole interface
// the wrong-book registry consumes.
type Summary struct {
	Total     int              `json:"total"`
	Answered  int              `json:"answered"`
	Correct   int              `json:"correct"`
	Incorrect int              `json:"incorrect"`
	Seed      int64            `json:"seed"`
	Results   []QuestionResult `json:"results"`
}

// Session is one quiz attempt. Created by New, mutated only through its
// methods, discarded when the quiz is exited or completed.
type Session struct {
	state     State
	order     []string
	questions map[string]bank.Question
	answers   map[string]Answer
	index     int

	seed      int64
	startedAt time.Time
	limit     time.Duration

	answered  int
	correct   int
	incorrect int
}

// New starts a session over subset. The subset must be non-empty; its order
// is preserved for OrderSequential and permuted by the recorded seed for
// OrderShuffled. Duplicate question ids collapse to their first occurrence,
// so counters and summary results stay one-per-question.
func New(subset []bank.Question, cfg Config) (*Session, error) {
	if len(subset) == 0 {
		return nil, ErrEmptySubset
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		state:     StateInProgress,
		questions: make(map[string]bank.Question, len(subset)),
		answers:   make(map[string]Answer, len(subset)),
		order:     make([]string, 0, len(subset)),
		seed:      seed,
		startedAt: time.Now(),
		limit:     time.Duration(cfg.TimeLimitSec) * time.Second,
	}
	for _, q := range subset {
		if _, dup := s.questions[q.ID]; dup {
			continue
		}
		s.questions[q.ID] = q
		s.order = append(s.order, q.ID)
	}
	if cfg.Order == OrderShuffled {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(s.order), func(i, j int) {
			s.order[i], s.order[j] = s.order[j], s.order[i]
		})
	}
	return s, nil
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Seed returns the effective ordering seed, recorded for replay.
func (s *Session) Seed() int64 { return s.seed }

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.order) }

// Index returns the current zero-based position.
func (s *Session) Index() int { return s.index }

// Remaining reports time left for a timed session at now. Untimed sessions
// return 0, false.
func (s *Session) Remaining(now time.Time) (time.Duration, bool) {
	if s.limit <= 0 {
		return 0, false
	}
	left := s.limit - now.Sub(s.startedAt)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Current returns the question at the current position. Fails with
// ErrOutOfRange once the session is completed.
func (s *Session) Current() (bank.Question, error) {
	if s.state != StateInProgress || s.index >= len(s.order) {
		return bank.Question{}, ErrOutOfRange
	}
	return s.questions[s.order[s.index]], nil
}

// AnswerFor returns the recorded answer for a question, if any.
func (s *Session) AnswerFor(id string) (Answer, bool) {
	a, ok := s.answers[id]
	return a, ok
}

// Submit records the selection for the current question and scores it.
// Answers are write-once: a second submission fails with ErrAlreadyAnswered
// and leaves the first recording untouched. A multi-answer question scores
// correct only on exact set equality with its answer key; subsets,
// supersets, and overlaps all score incorrect.
func (s *Session) Submit(selection []int) (Answer, error) {
	q, err := s.Current()
	if err != nil {
		return Answer{}, err
	}
	if _, done := s.answers[q.ID]; done {
		return Answer{}, ErrAlreadyAnswered
	}
	a := Answer{Selection: selection, Correct: setEqual(selection, q.Answer)}
	s.answers[q.ID] = a
	s.answered++
	if a.Correct {
		s.correct++
	} else {
		s.incorrect++
	}
	return a, nil
}

// Advance moves to the next question, or completes the session when the
// current position is the last. Fails with ErrInvalidTransition on a
// completed session.
func (s *Session) Advance() error {
	if s.state != StateInProgress {
		return ErrInvalidTransition
	}
	if s.index >= len(s.order)-1 {
		s.state = StateCompleted
		return nil
	}
	s.index++
	return nil
}

// Summary returns the frozen outcome. Valid only once completed; an
// abandoned in-progress session yields nothing and therefore leaves no
// trace in any registry.
func (s *Session) Summary() (Summary, error) {
	if s.state != StateCompleted {
		return Summary{}, ErrInvalidTransition
	}
	sum := Summary{
		Total:     len(s.order),
		Answered:  s.answered,
		Correct:   s.correct,
		Incorrect: s.incorrect,
		Seed:      s.seed,
		Results:   make([]QuestionResult, 0, s.answered),
	}
	for _, id := range s.order {
		if a, ok := s.answers[id]; ok {
			sum.Results = append(sum.Results, QuestionResult{QuestionID: id, Correct: a.Correct})
		}
	}
	return sum, nil
}

// setEqual compares selection sets regardless of order or repeats.
func setEqual(a, b []int) bool {
	as := map[int]struct{}{}
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := map[int]struct{}{}
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}
