package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

const EndpointLogin = "login"

// Poster is the slice of the webhook client the domain services use.
type Poster interface {
	Post(ctx context.Context, endpoint webhook.Endpoint, payload any) ([]byte, error)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// profile is the `data` object of a successful login reply.
type profile struct {
	Account   webhook.Text   `json:"帳號"`
	Name      webhook.Text   `json:"姓名"`
	Title     webhook.Text   `json:"職稱"`
	Email     webhook.Text   `json:"email"`
	WorkStart webhook.Text   `json:"上班時間"`
	WorkEnd   webhook.Text   `json:"下班時間"`
	Allowance webhook.Number `json:"特休時數"`
	UsedHours webhook.Number `json:"已請特休時數"`
}

func (p profile) session(fallbackAccount string) session.Session {
	account := strings.TrimSpace(p.Account.String())
	if account == "" {
		account = fallbackAccount
	}
	return session.Session{
		Account:              account,
		DisplayName:          p.Name.String(),
		Title:                p.Title.String(),
		Email:                p.Email.String(),
		WorkStartTime:        p.WorkStart.String(),
		WorkEndTime:          p.WorkEnd.String(),
		AnnualLeaveAllowance: p.Allowance.Float64(),
		AnnualLeaveUsed:      p.UsedHours.Float64(),
	}
}

type Service struct {
	Client   Poster
	LoginURL string
	Store    session.Store
}

func NewService(client Poster, loginURL string, store session.Store) *Service {
	return &Service{Client: client, LoginURL: loginURL, Store: store}
}

// Authenticate checks credentials against the login webhook and, on success,
// persists the returned profile. On failure the existing session, if any, is
// left alone.
func (s *Service) Authenticate(ctx context.Context, w http.ResponseWriter, account, secret string) (session.Session, error) {
	account = strings.TrimSpace(account)
	if account == "" || secret == "" {
		return session.Session{}, &Error{Message: MsgMissingCredents, Err: ErrMissingCredentials}
	}

	body, err := s.Client.Post(ctx, webhook.Endpoint{Name: EndpointLogin, URL: s.LoginURL}, loginRequest{
		Username: account,
		Password: secret,
	})
	if err != nil {
		return session.Session{}, &Error{Message: webhook.Message(err, MsgUnavailable), Err: err}
	}

	outcome, err := webhook.Decode[profile](body)
	if err != nil {
		return session.Session{}, &Error{Message: MsgUnavailable, Err: err}
	}
	if err := outcome.Err(EndpointLogin, MsgRejected); err != nil {
		return session.Session{}, &Error{Message: webhook.Message(err, MsgRejected), Err: err}
	}

	sess := outcome.Data.session(account)
	if err := s.Store.Save(w, sess); err != nil {
		return session.Session{}, &Error{Message: MsgUnavailable, Err: err}
	}
	return sess, nil
}

// EndSession forgets the persisted session. No remote call is made.
func (s *Service) EndSession(w http.ResponseWriter) {
	s.Store.Clear(w)
}

func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
