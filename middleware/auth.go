package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/userctx"
)

// SessionEmailKey is the session key holding the logged-in user's email
const SessionEmailKey = "user_email"

// UserFinder resolves the authenticated identity to a user
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// IdentifyFunc extracts the authenticated email from a request, or ""
type IdentifyFunc func(r *http.Request) string

// SessionEmail reads the email stored in the session at login
func SessionEmail(r *http.Request) string {
	sess := session.GetSession(r)
	if sess == nil {
		return ""
	}
	email, _ := sess.Get(SessionEmailKey).(string)
	return email
}

// RequireUser ensures the request belongs to a known, active user and
// adds that user to the request context
func RequireUser(users UserFinder, identify IdentifyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email := identify(r)
			if email == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := users.GetUserByEmail(r.Context(), email)
			if errors.Is(err, models.ErrNotFound) {
				writeError(w, http.StatusForbidden, "no user registered for "+email)
				return
			}
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to look up user", "email", email, "error", err)
				writeError(w, http.StatusInternalServerError, "failed to look up user")
				return
			}
			if !user.Active {
				writeError(w, http.StatusForbidden, "user is not active")
				return
			}

			ctx := userctx.SetUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects users without the administrator role. It must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userctx.GetUser(r.Context())
		if user == nil || !user.IsAdmin() {
			writeError(w, http.StatusForbidden, "administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
