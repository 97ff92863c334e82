package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizbook/quizbook/internal/bank"
)

// ListGroupsHandler returns the manifest group metadata with declared and
// actually loaded counts, for the group-selection screen.
func ListGroupsHandler(b *bank.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(struct {
			Size   int              `json:"size"`
			Groups []bank.GroupInfo `json:"groups"`
		}{Size: b.Size(), Groups: b.Groups})
	}
}

// GetQuestionHandler returns one catalog question by id, for review screens
// (wrong book, favorites) outside an active session.
func GetQuestionHandler(b *bank.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		q, ok := b.Get(id)
		if !ok {
			http.Error(w, "question not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}
