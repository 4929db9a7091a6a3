package leave

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
	mu       sync.Mutex
	calls    map[string]int
	bodies   map[string][]map[string]any
	handlers map[string]func(w http.ResponseWriter, body map[string]any)
	srv      *httptest.Server
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{
		calls:    map[string]int{},
		bodies:   map[string][]map[string]any{},
		handlers: map[string]func(http.ResponseWriter, map[string]any){},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.bodies[r.URL.Path] = append(f.bodies[r.URL.Path], body)
		handler := f.handlers[r.URL.Path]
		f.mu.Unlock()

		if handler == nil {
			http.NotFound(w, r)
			return
		}
		handler(w, body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRemote) on(path string, handler func(w http.ResponseWriter, body map[string]any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = handler
}

func (f *fakeRemote) reply(path, body string) {
	f.on(path, func(w http.ResponseWriter, _ map[string]any) {
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeRemote) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeRemote) lastBody(path string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := f.bodies[path]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

func (f *fakeRemote) endpoint(name string) webhook.Endpoint {
	return webhook.Endpoint{Name: name, URL: f.srv.URL + "/" + name}
}

func (f *fakeRemote) client() *webhook.Client {
	return webhook.NewClient(time.Second, nil)
}

type journalCall struct {
	account string
	action  string
	err     error
}

type fakeJournal struct {
	mu    sync.Mutex
	calls []journalCall
}

func (j *fakeJournal) Record(_ context.Context, account, action string, callErr error, _ string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, journalCall{account: account, action: action, err: callErr})
}

func testSession() session.Session {
	return session.Session{
		Account:              "amy",
		DisplayName:          "Amy Lin",
		WorkStartTime:        "08:30",
		WorkEndTime:          "17:30",
		AnnualLeaveAllowance: 112,
		AnnualLeaveUsed:      16,
	}
}
