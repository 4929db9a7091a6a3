package leavehandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adminportal/internal/domain/leave"
	"adminportal/internal/domain/workspace"
	"adminportal/internal/transport/http/api"
	"adminportal/internal/transport/http/middleware"
	"adminportal/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Workspaces *workspace.Registry
}

func NewHandler(workspaces *workspace.Registry) *Handler {
	return &Handler{Workspaces: workspaces}
}

type pickRequest struct {
	Date string `json:"date"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/draft", h.handleDraft)
		r.Post("/draft", h.handlePickDate)
		r.Patch("/draft", h.handleUpdateDraft)
		r.Delete("/draft", h.handleCloseDraft)
		r.Post("/draft/submit", h.handleSubmit)
		r.Get("/records", h.handleQuery)
		r.Get("/records/export.xlsx", h.handleExport)
		r.Post("/records/{recordID}/cancel", h.handleCancel)
	})
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(r)
	api.Success(w, ws.Leave.View(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePickDate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload pickRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	v := shared.NewValidator()
	day := v.OptionalDate("date", payload.Date)
	if day.IsZero() {
		v.Add("date", "必填")
	}
	if v.Reject(w, reqID) {
		return
	}

	sess, _ := middleware.GetSession(r.Context())
	view, err := h.workspace(r).Leave.PickDate(day, sess)
	h.respond(w, reqID, view, err)
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	edits, ok := shared.DecodeEdits(w, r, reqID)
	if !ok {
		return
	}
	view, err := h.workspace(r).Leave.Update(edits)
	h.respond(w, reqID, view, err)
}

func (h *Handler) handleCloseDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.workspace(r).Leave.Close()
	h.respond(w, middleware.GetRequestID(r.Context()), view, err)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	view, err := h.workspace(r).Leave.Submit(r.Context(), sess)
	h.respond(w, middleware.GetRequestID(r.Context()), view, err)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	v := shared.NewValidator()
	start := v.OptionalDate("start", query.Get("start"))
	end := v.OptionalDate("end", query.Get("end"))
	v.DateOrder("start", start, "end", end)
	history := false
	if raw := query.Get("history"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("history", "必須為 true 或 false")
		}
		history = parsed
	}
	if v.Reject(w, reqID) {
		return
	}

	sess, _ := middleware.GetSession(r.Context())
	view, err := h.workspace(r).LeaveQuery.Query(r.Context(), sess, start, end, history)
	h.respond(w, reqID, view, err)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	view, err := h.workspace(r).LeaveQuery.Cancel(r.Context(), sess, chi.URLParam(r, "recordID"))
	h.respond(w, middleware.GetRequestID(r.Context()), view, err)
}

// handleExport downloads the rows currently shown, without a new query.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	view := h.workspace(r).LeaveQuery.View()
	body, err := leave.ExportXLSX(view.Rows)
	if err != nil {
		slog.Error("leave export failed", "requestId", middleware.GetRequestID(r.Context()), "err", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "匯出失敗", middleware.GetRequestID(r.Context()))
		return
	}
	filename := "leave.xlsx"
	if view.Start != "" {
		filename = fmt.Sprintf("leave-%s-%s.xlsx", view.Start, view.End)
	}
	api.Attachment(w, xlsxContentType, filename, body)
}

func (h *Handler) workspace(r *http.Request) *workspace.Workspace {
	sess, _ := middleware.GetSession(r.Context())
	return h.Workspaces.Get(sess)
}

func (h *Handler) respond(w http.ResponseWriter, reqID string, view any, err error) {
	switch {
	case err == nil:
		api.Success(w, view, reqID)
	case errors.Is(err, leave.ErrBusy):
		shared.Busy(w, reqID, view)
	case errors.Is(err, leave.ErrNoDraft):
		api.FailWithDetails(w, http.StatusConflict, "no_draft", "請先選擇請假日期", nil, view, reqID)
	case errors.Is(err, leave.ErrMissingID):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", err.Error(), nil, view, reqID)
	default:
		shared.WriteError(w, reqID, err, view)
	}
}
