package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/quizbook/quizbook/internal/bank"
	"github.com/quizbook/quizbook/internal/db"
	"github.com/quizbook/quizbook/internal/registry"
)

// Mount attaches the quiz API to r.
func Mount(r chi.Router, b *bank.Bank, mgr *Manager, reg *registry.Registry, hist *db.SessionLog) {
	r.Get("/groups", ListGroupsHandler(b))
	r.Get("/questions/{questionID}", GetQuestionHandler(b))

	r.Post("/sessions", CreateSessionHandler(b, mgr))
	r.Get("/sessions/{sessionID}/current", CurrentQuestionHandler(mgr))
	r.Post("/sessions/{sessionID}/answer", SubmitAnswerHandler(mgr))
	r.Post("/sessions/{sessionID}/advance", AdvanceHandler(mgr))
	r.Post("/sessions/{sessionID}/finish", FinishSessionHandler(mgr, reg, hist))
	r.Delete("/sessions/{sessionID}", AbandonSessionHandler(mgr))

	r.Get("/wrongbook", ListWrongBookHandler(reg))
	r.Delete("/wrongbook/{questionID}", ClearWrongEntryHandler(reg))
	r.Delete("/wrongbook", ClearWrongBookHandler(reg))
	r.Get("/favorites", ListFavoritesHandler(reg))
	r.Post("/favorites/{questionID}/toggle", ToggleFavoriteHandler(reg))
	r.Get("/history", SessionHistoryHandler(hist))
}
