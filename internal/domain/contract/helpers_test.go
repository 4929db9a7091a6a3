package contract

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

type fakeRemote struct {
	mu     sync.Mutex
	calls  int
	bodies []map[string]any
	reply  func(w http.ResponseWriter)
	srv    *httptest.Server
}

func newFakeRemote(t *testing.T, reply func(w http.ResponseWriter)) *fakeRemote {
	t.Helper()
	f := &fakeRemote{reply: reply}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.calls++
		f.bodies = append(f.bodies, body)
		reply := f.reply
		f.mu.Unlock()
		reply(w)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func replyWith(body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRemote) lastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return nil
	}
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeRemote) endpoint() webhook.Endpoint {
	return webhook.Endpoint{Name: "contract", URL: f.srv.URL}
}

type fakeJournal struct {
	mu      sync.Mutex
	actions []string
}

func (j *fakeJournal) Record(_ context.Context, _, action string, _ error, _ string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, action)
}

func testSession() session.Session {
	return session.Session{Account: "amy", DisplayName: "Amy Lin", Email: "amy@example.com"}
}

var fixedNow = time.Date(2025, 3, 14, 10, 30, 15, 0, time.Local)

func newRequestController(t *testing.T, reply func(http.ResponseWriter)) (*RequestController, *fakeRemote, *fakeJournal) {
	t.Helper()
	remote := newFakeRemote(t, reply)
	j := &fakeJournal{}
	c := NewRequestController(webhook.NewClient(time.Second, nil), remote.endpoint(), j, testSession())
	c.Now = func() time.Time { return fixedNow }
	_, _ = c.Discard()
	return c, remote, j
}
