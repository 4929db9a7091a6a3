package contracthandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adminportal/internal/domain/contract"
	"adminportal/internal/domain/forms"
	"adminportal/internal/domain/workspace"
	"adminportal/internal/transport/http/api"
	"adminportal/internal/transport/http/middleware"
	"adminportal/internal/transport/http/shared"
)

type Handler struct {
	Workspaces *workspace.Registry
	PDF        contract.PDFRenderer
}

func NewHandler(workspaces *workspace.Registry, pdf contract.PDFRenderer) *Handler {
	return &Handler{Workspaces: workspaces, PDF: pdf}
}

type termRequest struct {
	Term string `json:"term"`
}

// schemaView lets the SPA render the contract dialog without hard-coding
// field keys or option lists.
type schemaView struct {
	Fields          []forms.Field `json:"fields"`
	TermLabels      []string      `json:"termLabels"`
	MaxInstallments int           `json:"maxInstallments"`
	Statuses        []string      `json:"statuses"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/contract", func(r chi.Router) {
		r.Get("/schema", h.handleSchema)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/draft", h.handleDraft)
			r.Patch("/draft", h.handleUpdateDraft)
			r.Delete("/draft", h.handleDiscard)
			r.Put("/draft/term", h.handleSetTerm)
			r.Put("/draft/installments/{slot}", h.handleSetInstallment)
			r.Post("/draft/submit", h.handleSubmit)
			r.Get("/draft/pdf", h.handlePDF)
			r.Post("/records/search", h.handleSearch)
			r.Get("/records/{key}", h.handleDetail)
		})
	})
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	api.Success(w, schemaView{
		Fields:          contract.DraftSchema.Fields(),
		TermLabels:      contract.TermLabels,
		MaxInstallments: contract.MaxInstallments,
		Statuses:        contract.Statuses,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.workspace(r).Contract.View(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	edits, ok := shared.DecodeEdits(w, r, reqID)
	if !ok {
		return
	}
	view, err := h.workspace(r).Contract.SetMany(edits)
	h.respond(w, reqID, view, err)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	view, err := h.workspace(r).Contract.Discard()
	h.respond(w, middleware.GetRequestID(r.Context()), view, err)
}

func (h *Handler) handleSetTerm(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload termRequest
	if !shared.DecodeJSON(w, r, reqID, &payload) {
		return
	}
	view, err := h.workspace(r).Contract.SetInstallmentTermCount(payload.Term)
	h.respond(w, reqID, view, err)
}

// handleSetInstallment accepts {"amount": ..., "percentage": ...}; either
// may be omitted. Both are applied or neither.
func (h *Handler) handleSetInstallment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil || slot < 1 || slot > contract.MaxInstallments {
		shared.FailValidation(w, reqID, forms.Invalid("slot", "期款編號必須介於 1 到 5"), nil)
		return
	}
	body, ok := shared.DecodeEdits(w, r, reqID)
	if !ok {
		return
	}
	edits := map[string]string{}
	for field, value := range body {
		switch field {
		case "amount":
			edits[contract.AmountKey(slot)] = value
		case "percentage":
			edits[contract.PercentKey(slot)] = value
		default:
			shared.FailValidation(w, reqID, forms.Invalid(field, "未知欄位"), nil)
			return
		}
	}
	view, err := h.workspace(r).Contract.SetMany(edits)
	h.respond(w, reqID, view, err)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	view, err := h.workspace(r).Contract.Submit(r.Context(), sess)
	h.respond(w, middleware.GetRequestID(r.Context()), view, err)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	body, err := h.PDF.Render(h.workspace(r).Contract.View())
	if err != nil {
		slog.Error("contract pdf failed", "requestId", reqID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "產生 PDF 失敗", reqID)
		return
	}
	api.Attachment(w, "application/pdf", "contract-request.pdf", body)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var filters contract.Filters
	if !shared.DecodeJSON(w, r, reqID, &filters) {
		return
	}
	view, err := h.workspace(r).ContractQuery.Search(r.Context(), filters)
	h.respond(w, reqID, view, err)
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	row, err := h.workspace(r).ContractQuery.Detail(chi.URLParam(r, "key"))
	if errors.Is(err, contract.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "查無此合約", reqID)
		return
	}
	h.respond(w, reqID, row, err)
}

func (h *Handler) workspace(r *http.Request) *workspace.Workspace {
	sess, _ := middleware.GetSession(r.Context())
	return h.Workspaces.Get(sess)
}

func (h *Handler) respond(w http.ResponseWriter, reqID string, view any, err error) {
	switch {
	case err == nil:
		api.Success(w, view, reqID)
	case errors.Is(err, contract.ErrBusy):
		shared.Busy(w, reqID, view)
	default:
		shared.WriteError(w, reqID, err, view)
	}
}
