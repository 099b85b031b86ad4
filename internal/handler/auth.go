package handler

import (
	"context"
	"net/http"
	"strings"

	"eventhub/internal/model"
	"eventhub/internal/service"
)

type ctxKey int

const userKey ctxKey = 0

// Auth resolves an optional bearer token to a user and stores it in the
// request context. Requests without (or with an unknown) token pass
// through unauthenticated; RequireAuth gates the routes that need an
// identity. Session management itself lives elsewhere; the token is
// just looked up in the user store.
func Auth(users *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				if user, err := users.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser returns the authenticated user, or nil.
func currentUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(userKey).(*model.User)
	return user
}

// currentUserID returns the authenticated user's ID, or "" when the
// request is unauthenticated.
func currentUserID(r *http.Request) string {
	if user := currentUser(r); user != nil {
		return user.ID
	}
	return ""
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
