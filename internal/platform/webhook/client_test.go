package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adminportal/internal/requestctx"
)

type recordedCall struct {
	endpoint string
	result   string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeRecorder) RecordWebhook(endpoint, result string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{endpoint: endpoint, result: result})
}

func TestPostSendsJSONAndRequestID(t *testing.T) {
	var gotBody map[string]any
	var gotReqID, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[{"status":"success"}]`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	client := NewClient(time.Second, rec)
	ctx := requestctx.WithRequestID(context.Background(), "req-1")

	body, err := client.Post(ctx, Endpoint{Name: "login", URL: srv.URL}, map[string]string{"username": "amy"})
	require.NoError(t, err)
	require.JSONEq(t, `[{"status":"success"}]`, string(body))
	require.Equal(t, "req-1", gotReqID)
	require.Equal(t, "application/json", gotType)
	require.Equal(t, "amy", gotBody["username"])
	require.Equal(t, []recordedCall{{endpoint: "login", result: "ok"}}, rec.calls)
}

func TestPostNon2xxWithMessageIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"帳號不存在"}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	_, err := NewClient(time.Second, rec).Post(context.Background(), Endpoint{Name: "login", URL: srv.URL}, nil)
	rejected, ok := AsRejected(err)
	require.True(t, ok)
	require.Equal(t, "帳號不存在", rejected.Message)
	require.False(t, IsTransport(err))
	require.Equal(t, "rejected", rec.calls[0].result)
}

func TestPostNon2xxWithoutMessageIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(time.Second, nil).Post(context.Background(), Endpoint{Name: "login", URL: srv.URL}, nil)
	require.True(t, IsTransport(err))
	require.Equal(t, "fallback", Message(err, "fallback"))
}

func TestPostUnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &fakeRecorder{}
	_, err := NewClient(time.Second, rec).Post(context.Background(), Endpoint{Name: "leave_query", URL: url}, nil)
	require.ErrorIs(t, err, ErrTransport)
	require.Equal(t, "transport", rec.calls[0].result)
}
