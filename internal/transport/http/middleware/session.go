package middleware

import (
	"context"
	"net/http"

	"adminportal/internal/domain/session"
	"adminportal/internal/requestctx"
	"adminportal/internal/transport/http/api"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

// Session loads the caller's session, if any, into the request context.
// Requests without one pass through unchanged.
func Session(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := store.Load(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeySession, sess)
			ctx = requestctx.WithAccount(ctx, sess.Account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no session with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "請先登入", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetSession(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(session.Session)
	return sess, ok
}

// WithSession is used by handler tests to skip the cookie round trip.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	ctx = context.WithValue(ctx, ctxKeySession, sess)
	return requestctx.WithAccount(ctx, sess.Account)
}
