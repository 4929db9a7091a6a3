package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	cryptoutil "adminportal/internal/platform/crypto"
)

// CookieName is the single well-known key the session lives under.
const CookieName = "userData"

type claims struct {
	Payload string `json:"p"`
	jwt.RegisteredClaims
}

// CookieStore keeps the session in the browser: the profile JSON is sealed
// with AES-GCM and wrapped in an HS256 token so it can be neither read nor
// forged client-side.
type CookieStore struct {
	Secret []byte
	Crypto *cryptoutil.Service
	TTL    time.Duration
	Secure bool
}

func NewCookieStore(secret string, crypto *cryptoutil.Service, ttl time.Duration, secure bool) *CookieStore {
	return &CookieStore{Secret: []byte(secret), Crypto: crypto, TTL: ttl, Secure: secure}
}

func (c *CookieStore) Load(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}
	s, err := c.decode(cookie.Value)
	if err != nil || !s.Valid() {
		return Session{}, false
	}
	return s, true
}

func (c *CookieStore) Save(w http.ResponseWriter, s Session) error {
	if !s.Valid() {
		return errors.New("session account required")
	}
	token, expires, err := c.encode(s, time.Now())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieStore) encode(s Session, now time.Time) (string, time.Time, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", time.Time{}, err
	}
	sealed, err := c.Crypto.EncryptString(string(payload))
	if err != nil {
		return "", time.Time{}, err
	}
	expires := now.Add(c.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Payload: sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Account,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (c *CookieStore) decode(raw string) (Session, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.Secret, nil
	})
	if err != nil {
		return Session{}, err
	}
	parsed, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Session{}, errors.New("invalid session token")
	}
	plain, err := c.Crypto.DecryptString(parsed.Payload)
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal([]byte(plain), &s); err != nil {
		return Session{}, err
	}
	if s.Account != parsed.Subject {
		return Session{}, errors.New("session subject mismatch")
	}
	return s, nil
}

// MemoryStore holds one session under a fixed key regardless of request.
// It backs tests and single-user tooling.
type MemoryStore struct {
	mu      sync.Mutex
	current *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ *http.Request) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

func (m *MemoryStore) Save(_ http.ResponseWriter, s Session) error {
	if !s.Valid() {
		return errors.New("session account required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &s
	return nil
}

func (m *MemoryStore) Clear(_ http.ResponseWriter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}
