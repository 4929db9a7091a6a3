package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"adminportal/internal/domain/session"
	"adminportal/internal/requestctx"
)

func TestSessionGate(t *testing.T) {
	store := session.NewMemoryStore()
	var account string
	handler := Session(store)(RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSession(r.Context())
		require.True(t, ok)
		account = requestctx.GetAccount(r.Context())
		require.Equal(t, sess.Account, account)
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leave/draft", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `"unauthorized"`)

	require.NoError(t, store.Save(nil, session.Session{Account: "amy"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leave/draft", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "amy", account)
}
