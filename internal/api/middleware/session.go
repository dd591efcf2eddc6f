package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UsernameCtxKey contextKey = "username"

// SessionResolver turns a login marker into the username it was issued for.
type SessionResolver interface {
	Session(token string) (string, error)
}

// TokenFromSessionCookie reads the marker from the named cookie.
func TokenFromSessionCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// CurrentUser attaches the username of a valid marker to the request context. Requests
// without one, or with a bad one, pass through anonymously.
func CurrentUser(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	findToken := []func(*http.Request) string{
		TokenFromSessionCookie(cookieName),
		jwtauth.TokenFromHeader,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			for _, fn := range findToken {
				if token = fn(r); token != "" {
					break
				}
			}
			if token != "" {
				if username, err := resolver.Session(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UsernameCtxKey, username))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameCtxKey).(string)
	return username, ok
}
