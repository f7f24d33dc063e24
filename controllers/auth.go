package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/tasktime/authenticator"
	authmiddleware "github.com/blogem/tasktime/middleware"
	"github.com/blogem/tasktime/models"
	"github.com/blogem/tasktime/services"
)

// AuthController handles the OpenID Connect login flow
type AuthController struct {
	services *services.Services
}

// NewAuthController creates a new auth controller
func NewAuthController(services *services.Services) *AuthController {
	return &AuthController{services: services}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Generate random state
		state, err := generateRandomState()
		if err != nil {
			renderError(w, r, err)
			return
		}

		// Save the state in the session to validate in callback
		sess := session.GetSession(r)
		if err := sess.Set("state", state); err != nil {
			renderError(w, r, err)
			return
		}

		http.Redirect(w, r, auth.AuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the redirect back from the identity provider
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		// Verify state
		storedState, _ := sess.Get("state").(string)
		if storedState == "" {
			renderJSON(w, http.StatusBadRequest, errorResponse{Error: "state not found in session"})
			return
		}
		if r.URL.Query().Get("state") != storedState {
			renderJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid state parameter"})
			return
		}

		identity, err := auth.Authenticate(r.Context(), r.URL.Query().Get("code"))
		if errors.Is(err, authenticator.ErrEmailNotVerified) {
			renderJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
			return
		}
		if err != nil {
			slog.WarnContext(r.Context(), "login failed", "error", err)
			renderJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication failed"})
			return
		}

		// Only registered users may sign in
		user, err := ac.services.User.GetUserByEmail(r.Context(), identity.Email)
		if errors.Is(err, models.ErrNotFound) {
			renderJSON(w, http.StatusForbidden, errorResponse{Error: "no user registered for " + identity.Email})
			return
		}
		if err != nil {
			renderError(w, r, err)
			return
		}

		_ = sess.Set(authmiddleware.SessionEmailKey, user.Email)
		_ = sess.Set("user_nickname", identity.Name)
		_ = sess.Delete("state")

		slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID, "subject", identity.Subject)
		http.Redirect(w, r, "/api/me", http.StatusSeeOther)
	}
}

// Logout clears the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	_ = sess.Delete(authmiddleware.SessionEmailKey)
	_ = sess.Delete("user_nickname")
	w.WriteHeader(http.StatusNoContent)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
