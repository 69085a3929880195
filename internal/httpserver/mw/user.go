package mw

import (
	"context"
	"net/http"
	"strings"
)

// UserHeader carries the admin user authenticated upstream.
const UserHeader = "X-Automator-User"

type userKey struct{}

// User stores the acting admin user in the request context.
func User(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimSpace(r.Header.Get(UserHeader))
		if user != "" {
			r = r.WithContext(context.WithValue(r.Context(), userKey{}, user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests. Mount it after User.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"data":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFrom returns the acting user, "" when anonymous.
func UserFrom(ctx context.Context) string {
	user, _ := ctx.Value(userKey{}).(string)
	return user
}

// NoCache marks the response as never cacheable.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, must-revalidate, max-age=0, no-store, private")
		h.Set("Expires", "Wed, 11 Jan 1984 05:00:00 GMT")
		h.Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
