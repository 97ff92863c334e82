package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizbook/quizbook/internal/bank"
	"github.com/quizbook/quizbook/internal/db"
	"github.com/quizbook/quizbook/internal/registry"
	"github.com/quizbook/quizbook/internal/session"
)

// CreateSessionHandler starts a quiz session over a catalog subset: an
// explicit id list, a manifest group, or the whole catalog.
func CreateSessionHandler(b *bank.Bank, mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Group        string   `json:"group"`
			QuestionIDs  []string `json:"question_ids"`
			Order        string   `json:"order"`
			Seed         int64    `json:"seed"`
			TimeLimitSec int      `json:"time_limit_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}

		var subset []bank.Question
		switch {
		case len(req.QuestionIDs) > 0:
			for _, id := range req.QuestionIDs {
				q, ok := b.Get(id)
				if !ok {
					http.Error(w, "unknown question id: "+id, 400)
					return
				}
				subset = append(subset, q)
			}
		case req.Group != "":
			subset = b.Group(req.Group)
			if subset == nil {
				http.Error(w, "unknown group: "+req.Group, 400)
				return
			}
		default:
			subset = b.All()
		}

		order := session.Order(req.Order)
		if order == "" {
			order = session.OrderSequential
		}
		s, err := session.New(subset, session.Config{
			Order:        order,
			Seed:         req.Seed,
			TimeLimitSec: req.TimeLimitSec,
		})
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		id := mgr.Add(s)
		_ = json.NewEncoder(w).Encode(struct {
			SessionID string `json:"session_id"`
			Total     int    `json:"total"`
			Seed      int64  `json:"seed"`
		}{SessionID: id, Total: s.Len(), Seed: s.Seed()})
	}
}

// CurrentQuestionHandler returns the question at the session's current
// position, with any already-recorded answer.
func CurrentQuestionHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		var out struct {
			Index     int             `json:"index"`
			Total     int             `json:"total"`
			Question  bank.Question   `json:"question"`
			Answered  bool            `json:"answered"`
			Answer    *session.Answer `json:"answer,omitempty"`
			Remaining int             `json:"remaining_sec,omitempty"`
		}
		err := mgr.Do(id, func(s *session.Session) error {
			q, err := s.Current()
			if err != nil {
				return err
			}
			out.Index = s.Index()
			out.Total = s.Len()
			out.Question = q
			if a, ok := s.AnswerFor(q.ID); ok {
				out.Answered = true
				out.Answer = &a
			} else {
				// hide the key and explanation until the answer is in
				out.Question.Answer = nil
				out.Question.Exp = ""
			}
			if left, timed := s.Remaining(time.Now()); timed {
				out.Remaining = int(left / time.Second)
			}
			return nil
		})
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// SubmitAnswerHandler records the selection for the current question.
// Answers are write-once; the correct answer and explanation come back so
// the UI can show them immediately.
func SubmitAnswerHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		var req struct {
			Selection []int `json:"selection"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		var out struct {
			Correct bool   `json:"correct"`
			Answer  []int  `json:"answer"`
			Exp     string `json:"exp"`
		}
		err := mgr.Do(id, func(s *session.Session) error {
			q, err := s.Current()
			if err != nil {
				return err
			}
			a, err := s.Submit(req.Selection)
			if err != nil {
				return err
			}
			out.Correct = a.Correct
			out.Answer = q.Answer
			out.Exp = q.Exp
			return nil
		})
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// AdvanceHandler moves to the next question; on the last question it
// completes the session.
func AdvanceHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		var state session.State
		err := mgr.Do(id, func(s *session.Session) error {
			if err := s.Advance(); err != nil {
				return err
			}
			state = s.State()
			return nil
		})
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(struct {
			State session.State `json:"state"`
		}{State: state})
	}
}

// FinishSessionHandler takes the summary of a completed session, feeds the
// wrong book and the history log, and drops the session. This is the only
// path by which a session touches the registries.
func FinishSessionHandler(mgr *Manager, reg *registry.Registry, hist *db.SessionLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		sum, err := mgr.TakeCompleted(id)
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		if err := reg.RecordOutcome(sum); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if err := hist.Append(r.Context(), id, sum); err != nil {
			// history is best-effort; the registries already have the outcome
			log.Printf("session log append: %v", err)
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// AbandonSessionHandler drops an in-progress session with no registry side
// effects: incomplete attempts leave no wrong-book trace.
func AbandonSessionHandler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr.Remove(chi.URLParam(r, "sessionID"))
		w.WriteHeader(204)
	}
}

func writeSessionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, err.Error(), 404)
	case errors.Is(err, session.ErrAlreadyAnswered),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrOutOfRange),
		errors.Is(err, session.ErrEmptySubset):
		// control-flow misuse: a UI bug, not a user mistake
		http.Error(w, err.Error(), 409)
	default:
		http.Error(w, err.Error(), 500)
	}
}
