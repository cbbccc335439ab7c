package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/HammerMeetNail/slotswap/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

const sessionCookieName = "session_token"

func SetUserInContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// SessionTokenFromRequest returns the bearer token, falling back to the
// session cookie. Empty means the request carries no credentials.
func SessionTokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
