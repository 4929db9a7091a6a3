package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

func newService(t *testing.T, handler http.HandlerFunc) (*Service, *session.MemoryStore, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	return NewService(webhook.NewClient(time.Second, nil), srv.URL, store), store, &calls
}

func TestAuthenticateSuccessPersistsSession(t *testing.T) {
	svc, store, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"status":"success","message":"ok","data":{
			"帳號":"amy","姓名":"Amy Lin","職稱":"PM","email":"amy@example.com",
			"上班時間":"08:30","下班時間":"17:30","特休時數":"112","已請特休時數":16}}]`))
	})

	got, err := svc.Authenticate(context.Background(), httptest.NewRecorder(), "amy", "pw")
	require.NoError(t, err)
	require.Equal(t, "Amy Lin", got.DisplayName)
	require.Equal(t, 96.0, got.RemainingLeaveHours())

	persisted, ok := store.Load(nil)
	require.True(t, ok)
	require.Equal(t, got, persisted)
}

func TestAuthenticateRejectionSurfacesRemoteMessage(t *testing.T) {
	svc, store, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"status":"fail","message":"密碼錯誤"}]`))
	})

	_, err := svc.Authenticate(context.Background(), httptest.NewRecorder(), "amy", "bad")
	authErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, "密碼錯誤", authErr.Message)
	_, ok = store.Load(nil)
	require.False(t, ok)
}

func TestAuthenticateRejectionWithoutMessageUsesFallback(t *testing.T) {
	svc, _, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"status":"fail"}]`))
	})

	_, err := svc.Authenticate(context.Background(), httptest.NewRecorder(), "amy", "bad")
	authErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, MsgRejected, authErr.Message)
}

func TestAuthenticateTransportFailureKeepsPriorSession(t *testing.T) {
	svc, store, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	prior := session.Session{Account: "bob"}
	require.NoError(t, store.Save(nil, prior))

	_, err := svc.Authenticate(context.Background(), httptest.NewRecorder(), "amy", "pw")
	authErr, ok := AsError(err)
	require.True(t, ok)
	require.NotEmpty(t, authErr.Message)
	require.True(t, webhook.IsTransport(err))

	current, ok := store.Load(nil)
	require.True(t, ok)
	require.Equal(t, prior, current)
}

func TestAuthenticateRequiresCredentialsLocally(t *testing.T) {
	svc, _, calls := newService(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.Authenticate(context.Background(), httptest.NewRecorder(), "  ", "pw")
	require.ErrorIs(t, err, ErrMissingCredentials)
	require.Zero(t, *calls)
}

func TestEndSessionClearsStore(t *testing.T) {
	svc, store, calls := newService(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.Save(nil, session.Session{Account: "amy"}))

	svc.EndSession(httptest.NewRecorder())
	_, ok := store.Load(nil)
	require.False(t, ok)
	require.Zero(t, *calls)
}
