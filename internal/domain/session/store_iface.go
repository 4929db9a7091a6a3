package session

import "net/http"

// Store persists at most one session per browser. Load never fails: missing,
// expired or corrupt data reads as absent. Save replaces any prior value and
// Clear is idempotent.
type Store interface {
	Load(r *http.Request) (Session, bool)
	Save(w http.ResponseWriter, s Session) error
	Clear(w http.ResponseWriter)
}
