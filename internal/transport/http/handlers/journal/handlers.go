package journalhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"adminportal/internal/domain/journal"
	"adminportal/internal/transport/http/api"
	"adminportal/internal/transport/http/middleware"
	"adminportal/internal/transport/http/shared"
)

type Handler struct {
	Service *journal.Service
}

func NewHandler(service *journal.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireSession).Get("/journal", h.handleList)
}

// handleList returns the caller's own recent submissions, newest first.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	sess, _ := middleware.GetSession(r.Context())
	entries, err := h.Service.List(r.Context(), sess.Account, shared.ParseLimit(r, journal.DefaultListLimit, journal.MaxListLimit))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "journal_failed", "無法讀取提交紀錄", reqID)
		return
	}
	api.Success(w, entries, reqID)
}
