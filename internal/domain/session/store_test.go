package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cryptoutil "adminportal/internal/platform/crypto"
)

func newCookieStore(t *testing.T, ttl time.Duration) *CookieStore {
	t.Helper()
	svc, err := cryptoutil.Derive("test-secret", "session")
	require.NoError(t, err)
	return NewCookieStore("test-secret", svc, ttl, false)
}

func sample() Session {
	return Session{
		Account:              "amy",
		DisplayName:          "Amy Lin",
		Title:                "Engineer",
		Email:                "amy@example.com",
		WorkStartTime:        "08:30",
		WorkEndTime:          "17:30",
		AnnualLeaveAllowance: 112,
		AnnualLeaveUsed:      16,
	}
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestCookieStoreRoundTrip(t *testing.T) {
	store := newCookieStore(t, time.Hour)
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, sample()))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.NotContains(t, cookies[0].Value, "amy@example.com")

	got, ok := store.Load(requestWith(cookies))
	require.True(t, ok)
	require.Equal(t, sample(), got)
}

func TestCookieStoreTreatsCorruptDataAsAbsent(t *testing.T) {
	store := newCookieStore(t, time.Hour)

	_, ok := store.Load(requestWith(nil))
	require.False(t, ok)

	_, ok = store.Load(requestWith([]*http.Cookie{{Name: CookieName, Value: "garbage"}}))
	require.False(t, ok)

	other := newCookieStore(t, time.Hour)
	other.Secret = []byte("another-secret")
	rec := httptest.NewRecorder()
	require.NoError(t, other.Save(rec, sample()))
	_, ok = store.Load(requestWith(rec.Result().Cookies()))
	require.False(t, ok)
}

func TestCookieStoreExpiredTokenIsAbsent(t *testing.T) {
	store := newCookieStore(t, time.Hour)
	token, _, err := store.encode(sample(), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, ok := store.Load(requestWith([]*http.Cookie{{Name: CookieName, Value: token}}))
	require.False(t, ok)
}

func TestCookieStoreClearExpiresCookie(t *testing.T) {
	store := newCookieStore(t, time.Hour)
	rec := httptest.NewRecorder()
	store.Clear(rec)
	store.Clear(rec)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	_, ok := store.Load(nil)
	require.False(t, ok)

	require.Error(t, store.Save(nil, Session{}))
	require.NoError(t, store.Save(nil, sample()))
	got, ok := store.Load(nil)
	require.True(t, ok)
	require.Equal(t, "amy", got.Account)

	replacement := sample()
	replacement.Account = "bob"
	require.NoError(t, store.Save(nil, replacement))
	got, _ = store.Load(nil)
	require.Equal(t, "bob", got.Account)

	store.Clear(nil)
	store.Clear(nil)
	_, ok = store.Load(nil)
	require.False(t, ok)
}

func TestWorkHoursFallback(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	start, end := sample().WorkHours(day)
	require.Equal(t, time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, 3, 14, 17, 30, 0, 0, time.UTC), end)

	start, end = Session{Account: "x", WorkStartTime: "bogus"}.WorkHours(day)
	require.Equal(t, 9, start.Hour())
	require.Equal(t, 18, end.Hour())
}

func TestRemainingLeaveHours(t *testing.T) {
	require.Equal(t, 96.0, sample().RemainingLeaveHours())
}
