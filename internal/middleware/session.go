package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// SessionScopeKey holds the cart/wishlist scope for the request.
	SessionScopeKey contextKey = "session_scope"

	// SessionHeader carries the guest session id chosen by the client.
	SessionHeader = "X-Session-ID"
)

// SessionScope derives the scope that keys a request's cart and
// wishlist documents: the authenticated user id when present,
// otherwise the client-supplied session header, otherwise a fresh
// guest id echoed back so the client can keep it.
func SessionScope() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := GetUserID(r.Context())
			if ok {
				scope = "user:" + scope
			} else if sid := r.Header.Get(SessionHeader); sid != "" {
				scope = "session:" + sid
			} else {
				sid := uuid.NewString()
				scope = "session:" + sid
				w.Header().Set(SessionHeader, sid)
			}

			ctx := context.WithValue(r.Context(), SessionScopeKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionScope extracts the session scope from request context
func GetSessionScope(ctx context.Context) (string, bool) {
	scope, ok := ctx.Value(SessionScopeKey).(string)
	return scope, ok
}
