package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adminportal/internal/domain/auth"
	"adminportal/internal/domain/journal"
	"adminportal/internal/domain/session"
	"adminportal/internal/domain/workspace"
	"adminportal/internal/transport/http/api"
	"adminportal/internal/transport/http/middleware"
	"adminportal/internal/transport/http/shared"
)

type Handler struct {
	Service    *auth.Service
	Journal    *journal.Service
	Workspaces *workspace.Registry
	LoginLimit func(http.Handler) http.Handler
}

func NewHandler(service *auth.Service, journalSvc *journal.Service, workspaces *workspace.Registry, loginLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Journal: journalSvc, Workspaces: workspaces, LoginLimit: loginLimit}
}

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// sessionView is the dashboard info panel.
type sessionView struct {
	Account             string  `json:"account"`
	DisplayName         string  `json:"displayName"`
	Title               string  `json:"title"`
	Email               string  `json:"email"`
	WorkStartTime       string  `json:"workStartTime"`
	WorkEndTime         string  `json:"workEndTime"`
	AnnualLeaveHours    float64 `json:"annualLeaveHours"`
	UsedLeaveHours      float64 `json:"usedLeaveHours"`
	RemainingLeaveHours float64 `json:"remainingLeaveHours"`
}

func newSessionView(s session.Session) sessionView {
	return sessionView{
		Account:             s.Account,
		DisplayName:         s.DisplayName,
		Title:               s.Title,
		Email:               s.Email,
		WorkStartTime:       s.WorkStartTime,
		WorkEndTime:         s.WorkEndTime,
		AnnualLeaveHours:    s.AnnualLeaveAllowance,
		UsedLeaveHours:      s.AnnualLeaveUsed,
		RemainingLeaveHours: s.RemainingLeaveHours(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		login := r
		if h.LoginLimit != nil {
			login = r.With(h.LoginLimit)
		}
		login.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.With(middleware.RequireSession).Get("/session", h.handleSession)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	sess, err := h.Service.Authenticate(r.Context(), w, payload.Account, payload.Password)
	if errors.Is(err, auth.ErrMissingCredentials) {
		api.Fail(w, http.StatusBadRequest, "validation_error", auth.MsgMissingCredents, reqID)
		return
	}
	account := sess.Account
	if account == "" {
		account = payload.Account
	}
	h.Journal.Record(r.Context(), account, journal.ActionLogin, err, loginMessage(err))
	if err != nil {
		shared.WriteError(w, reqID, err, nil)
		return
	}
	// A fresh login starts from empty forms.
	h.Workspaces.Drop(sess.Account)
	api.Success(w, newSessionView(sess), reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSession(r.Context()); ok {
		h.Workspaces.Drop(sess.Account)
	}
	h.Service.EndSession(w)
	api.Success(w, map[string]bool{"loggedOut": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	api.Success(w, newSessionView(sess), middleware.GetRequestID(r.Context()))
}

func loginMessage(err error) string {
	if authErr, ok := auth.AsError(err); ok {
		return authErr.Message
	}
	return ""
}
