package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quizbook/quizbook/internal/db"
	"github.com/quizbook/quizbook/internal/registry"
)

func ListWrongBookHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := reg.WrongEntries()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(entries)
	}
}

// ClearWrongEntryHandler removes one question from the wrong book; this is
// the only way a question leaves it.
func ClearWrongEntryHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.ClearWrongEntry(chi.URLParam(r, "questionID")); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(204)
	}
}

func ClearWrongBookHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.ClearWrongBook(); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.WriteHeader(204)
	}
}

func ListFavoritesHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := reg.Favorites()
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(entries)
	}
}

func ToggleFavoriteHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fav, err := reg.ToggleFavorite(chi.URLParam(r, "questionID"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(struct {
			Favorite bool `json:"favorite"`
		}{Favorite: fav})
	}
}

func SessionHistoryHandler(hist *db.SessionLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := hist.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(entries)
	}
}
