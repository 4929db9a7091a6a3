package journal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"adminportal/internal/platform/webhook"
	"adminportal/internal/requestctx"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var ErrMissingAccount = errors.New("journal account required")

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

// OutcomeOf classifies the error returned by a webhook call.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case webhook.IsTransport(err):
		return OutcomeUnavailable
	default:
		return OutcomeRejected
	}
}

// Record stores one entry. Journal failures are logged and never reach the
// caller: the remote call already happened.
func (s *Service) Record(ctx context.Context, account, action string, callErr error, message string) {
	if s == nil || s.Store == nil {
		return
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return
	}
	entry := Entry{
		ID:        uuid.NewString(),
		Account:   account,
		Action:    action,
		Outcome:   OutcomeOf(callErr),
		Message:   message,
		RequestID: requestctx.GetRequestID(ctx),
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.Insert(ctx, entry); err != nil {
		slog.Warn("journal insert failed", "action", action, "err", err)
	}
}

func (s *Service) List(ctx context.Context, account string, limit int) ([]Entry, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, ErrMissingAccount
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	entries, err := s.Store.ListByAccount(ctx, account, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Purge deletes entries older than retention.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.Store.DeleteBefore(ctx, s.now().UTC().Add(-retention))
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
