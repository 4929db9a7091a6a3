package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adminportal/internal/app/server"
	"adminportal/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// remote fakes every webhook on one server, keyed by path.
type remote struct {
	mu      sync.Mutex
	replies map[string]string
	calls   map[string]int
	bodies  map[string]map[string]any
	srv     *httptest.Server
}

func newRemote(t *testing.T) *remote {
	t.Helper()
	r := &remote{replies: map[string]string{}, calls: map[string]int{}, bodies: map[string]map[string]any{}}
	r.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		r.mu.Lock()
		r.calls[req.URL.Path]++
		r.bodies[req.URL.Path] = body
		reply, ok := r.replies[req.URL.Path]
		r.mu.Unlock()
		if !ok {
			http.NotFound(w, req)
			return
		}
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(r.srv.Close)
	return r
}

func (r *remote) set(path, reply string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[path] = reply
}

func (r *remote) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

func (r *remote) body(path string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[path]
}

type portal struct {
	t      *testing.T
	url    string
	client *http.Client
}

func startPortal(t *testing.T, hooks *remote) *portal {
	t.Helper()
	base := hooks.srv.URL
	cfg := config.Config{
		Addr:               ":0",
		Environment:        "test",
		FrontendDir:        t.TempDir(),
		SessionSecret:      "test-secret",
		SessionTTL:         time.Hour,
		JournalSQLitePath:  filepath.Join(t.TempDir(), "journal.db"),
		JournalRetention:   time.Hour,
		WorkspaceIdleTTL:   time.Hour,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		MetricsEnabled:     true,
		Webhooks: config.WebhookConfig{
			LoginURL:          base + "/login",
			LeavePrecheckURL:  base + "/leave/precheck",
			LeaveCommitURL:    base + "/leave/commit",
			LeaveQueryURL:     base + "/leave/query",
			LeaveCancelURL:    base + "/leave/cancel",
			ContractSubmitURL: base + "/contract/submit",
			ContractQueryURL:  base + "/contract/query",
			Timeout:           2 * time.Second,
		},
	}
	app, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	return &portal{t: t, url: ts.URL, client: client}
}

func (p *portal) do(method, path string, body any) (int, envelope) {
	p.t.Helper()
	status, raw := p.raw(method, path, body)
	var env envelope
	require.NoError(p.t, json.Unmarshal(raw, &env), string(raw))
	return status, env
}

func (p *portal) raw(method, path string, body any) (int, []byte) {
	p.t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(p.t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, p.url+path, reader)
	require.NoError(p.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := p.client.Do(req)
	require.NoError(p.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(p.t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

const loginOK = `[{"status":"success","data":{"帳號":"amy","姓名":"Amy Lin","職稱":"Engineer","email":"amy@example.com","上班時間":"08:30","下班時間":"17:30","特休時數":112,"已請特休時數":16}}]`

func login(t *testing.T, p *portal, hooks *remote) {
	t.Helper()
	hooks.set("/login", loginOK)
	status, env := p.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"account": "amy", "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	p := startPortal(t, newRemote(t))
	for _, path := range []string{"/api/v1/auth/session", "/api/v1/leave/draft", "/api/v1/contract/draft", "/api/v1/journal"} {
		status, env := p.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusUnauthorized, status, path)
		require.Equal(t, "unauthorized", env.Error.Code)
	}

	status, _ := p.raw(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = p.raw(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = p.raw(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
}

func TestLoginLogoutJourney(t *testing.T) {
	hooks := newRemote(t)
	p := startPortal(t, hooks)

	hooks.set("/login", `[{"status":"fail","message":"帳號或密碼錯誤"}]`)
	status, env := p.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"account": "amy", "password": "bad"})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "帳號或密碼錯誤", env.Error.Message)

	status, env = p.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"account": "", "password": ""})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", env.Error.Code)

	login(t, p, hooks)
	require.Equal(t, "amy", hooks.body("/login")["username"])

	status, env = p.do(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, status)
	view := decode[map[string]any](t, env)
	require.Equal(t, "Amy Lin", view["displayName"])
	require.Equal(t, 96.0, view["remainingLeaveHours"])

	// A failed re-login leaves the existing session in place.
	hooks.set("/login", `not json`)
	status, _ = p.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"account": "amy", "password": "pw"})
	require.Equal(t, http.StatusBadGateway, status)
	status, _ = p.do(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = p.do(http.MethodGet, "/api/v1/journal", nil)
	require.Equal(t, http.StatusOK, status)
	entries := decode[[]map[string]any](t, env)
	require.Len(t, entries, 3)
	require.Equal(t, "unavailable", entries[0]["outcome"])

	status, _ = p.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = p.do(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestLeaveJourney(t *testing.T) {
	hooks := newRemote(t)
	p := startPortal(t, hooks)
	login(t, p, hooks)

	status, env := p.do(http.MethodPatch, "/api/v1/leave/draft", map[string]string{"leaveReason": "x"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "no_draft", env.Error.Code)

	status, env = p.do(http.MethodPost, "/api/v1/leave/draft", map[string]string{"date": "2025-03-14"})
	require.Equal(t, http.StatusOK, status)
	draft := decode[map[string]any](t, env)
	require.Equal(t, "editing", draft["state"])
	require.Equal(t, "08:30", draft["draft"].(map[string]any)["leaveStartTime"])

	status, env = p.do(http.MethodPatch, "/api/v1/leave/draft", map[string]string{"leaveEndDate": "2025-03-10"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "validation_error", env.Error.Code)

	status, _ = p.do(http.MethodPatch, "/api/v1/leave/draft", map[string]any{"leaveEndDate": "2025-03-15", "leaveReason": "家庭旅遊"})
	require.Equal(t, http.StatusOK, status)

	hooks.set("/leave/precheck", `[{"status":"fail","message":"特休額度不足"}]`)
	status, env = p.do(http.MethodPost, "/api/v1/leave/draft/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "請假檢查失敗：特休額度不足", env.Error.Message)
	require.Zero(t, hooks.count("/leave/commit"))

	hooks.set("/leave/precheck", `[{"status":"success","data":{"leaveHours":16}}]`)
	hooks.set("/leave/commit", `{"status":"success"}`)
	status, env = p.do(http.MethodPost, "/api/v1/leave/draft/submit", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "請假申請成功！", decode[map[string]any](t, env)["success"])
	commit := hooks.body("/leave/commit")
	require.Equal(t, "amy", commit["username"])
	require.Equal(t, 16.0, commit["leaveHours"])

	hooks.set("/leave/query", `[
	  {"單號":"L-001","假別":"特休","起始日期":"2025-03-14","結束日期":"2025-03-15","狀態":"待審核"},
	  {"單號":"L-002","假別":"病假","起始日期":"2025-03-03","結束日期":"2025-03-03","狀態":"已取消"}
	]`)
	status, env = p.do(http.MethodGet, "/api/v1/leave/records?start=2025-03-01&end=2025-03-31", nil)
	require.Equal(t, http.StatusOK, status)
	rows := decode[map[string]any](t, env)["rows"].([]any)
	require.Len(t, rows, 1)

	status, _ = p.do(http.MethodGet, "/api/v1/leave/records?start=2025-03-31&end=2025-03-01", nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, raw := p.raw(http.MethodGet, "/api/v1/leave/records/export.xlsx", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "PK", string(raw[:2]))

	hooks.set("/leave/cancel", `[{"status":"success"}]`)
	hooks.set("/leave/query", `[
	  {"單號":"L-001","假別":"特休","起始日期":"2025-03-14","結束日期":"2025-03-15","狀態":"已取消"}
	]`)
	status, env = p.do(http.MethodPost, "/api/v1/leave/records/L-001/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, decode[map[string]any](t, env)["rows"])
	require.Equal(t, "L-001", hooks.body("/leave/cancel")["leaveId"])
}

func TestContractJourney(t *testing.T) {
	hooks := newRemote(t)
	p := startPortal(t, hooks)

	status, env := p.do(http.MethodGet, "/api/v1/contract/schema", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, decode[map[string]any](t, env)["fields"])

	login(t, p, hooks)

	status, env = p.do(http.MethodGet, "/api/v1/contract/draft", nil)
	require.Equal(t, http.StatusOK, status)
	draft := decode[map[string]any](t, env)
	require.Equal(t, "amy@example.com", draft["draft"].(map[string]any)["電子郵件"])

	status, _ = p.do(http.MethodPut, "/api/v1/contract/draft/installments/2", map[string]any{"percentage": 40})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = p.do(http.MethodPut, "/api/v1/contract/draft/term", map[string]string{"term": "二期款"})
	require.Equal(t, http.StatusOK, status)
	status, _ = p.do(http.MethodPut, "/api/v1/contract/draft/installments/1", map[string]any{"amount": 6000, "percentage": 60})
	require.Equal(t, http.StatusOK, status)
	status, env = p.do(http.MethodPut, "/api/v1/contract/draft/installments/2", map[string]any{"percentage": 50})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, decode[map[string]any](t, env)["overAllocated"])

	status, env = p.do(http.MethodPost, "/api/v1/contract/draft/submit", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, env.Error.Message, "合約占比總和不可超過 100%")
	require.Zero(t, hooks.count("/contract/submit"))

	status, _ = p.do(http.MethodPut, "/api/v1/contract/draft/installments/2", map[string]any{"percentage": 40})
	require.Equal(t, http.StatusOK, status)

	status, raw := p.raw(http.MethodGet, "/api/v1/contract/draft/pdf", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "%PDF", string(raw[:4]))

	status, env = p.do(http.MethodDelete, "/api/v1/contract/draft", nil)
	require.Equal(t, http.StatusOK, status)
	discarded := decode[map[string]any](t, env)
	require.Equal(t, "Amy Lin", discarded["draft"].(map[string]any)["申請人"])

	hooks.set("/contract/query", `[
	  {"合約編號":"C(114)001","合約名稱":"維護合約","合約類型":"服務合約","申請日期":"2025/03/02"},
	  {"合約名稱":"採購案","合約類型":"採購合約","申請日期":"2025/03/05"}
	]`)
	status, env = p.do(http.MethodPost, "/api/v1/contract/records/search", map[string]string{"startDate": "2025-03-01", "endDate": "2025-03-31"})
	require.Equal(t, http.StatusOK, status)
	rows := decode[map[string]any](t, env)["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	require.Equal(t, "114", first["yearCode"])
	require.Equal(t, "已成立", first["statusLabel"])
	require.Equal(t, "申請中", rows[1].(map[string]any)["statusLabel"])

	status, _ = p.do(http.MethodGet, "/api/v1/contract/records/C(114)001", nil)
	require.Equal(t, http.StatusOK, status)
	status, env = p.do(http.MethodGet, "/api/v1/contract/records/missing", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "not_found", env.Error.Code)

	status, env = p.do(http.MethodPost, "/api/v1/contract/records/search", map[string]string{"startDate": ""})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "請選擇起始日期和結束日期", env.Error.Message)
}
