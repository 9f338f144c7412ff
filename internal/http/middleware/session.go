package middleware

import (
	"net/http"

	"github.com/davidbz/pricelab/internal/observability"
	"github.com/davidbz/pricelab/internal/simulator"
)

const (
	// SessionHeader carries the calculator session a request belongs to.
	SessionHeader = "X-Session-Id"

	maxSessionIDLength = 128
)

// Session puts the request's session ID into the context. Requests without
// the header share the default session.
func Session() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if sessionID == "" {
				sessionID = simulator.DefaultSession
			}
			if len(sessionID) > maxSessionIDLength {
				http.Error(w, "session id too long", http.StatusBadRequest)
				return
			}

			w.Header().Set(SessionHeader, sessionID)
			ctx := observability.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
