package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/auth"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/service"
	"github.com/sakif/frelance/internal/session"
)

const stateCookie = "oauth_state"

// AuthHandler manages sign-in, sign-out and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGitHubLogin / HandleGitHubCallback → GitHub OAuth flow
//   - HandleSignUp / HandleSignIn              → email and password
//   - HandleLogout                             → clear the cookie, reset the session
//   - HandleSession                            → who is signed in right now
//
// Every successful sign-in ends the same way: set the token cookie, then
// hand the new identity to AppService.Login, which loads the user's data and
// picks the landing view.
type AuthHandler struct {
	github *auth.GitHubProvider // nil when GitHub sign-in is not configured
	auth   *service.AuthService
	app    *service.AppService
	tokens *auth.TokenService
	secure bool
	logger *slog.Logger
}

func NewAuthHandler(
	github *auth.GitHubProvider,
	authService *service.AuthService,
	app *service.AppService,
	tokens *auth.TokenService,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github: github,
		auth:   authService,
		app:    app,
		tokens: tokens,
		secure: secureCookies,
		logger: logger,
	}
}

// signedIn finishes a successful sign-in. The session load can fail on its
// own; the cookie stays set and the snapshot carries the load error.
func (h *AuthHandler) signedIn(w http.ResponseWriter, r *http.Request, result *service.AuthResult) (session.Snapshot, error) {
	auth.SetSessionCookie(w, result.Token, h.tokens.TTL(), h.secure)

	visitorID, _ := auth.VisitorIDFromContext(r.Context())
	snap, err := h.app.Login(r.Context(), service.Identity{UserID: result.User.ID, VisitorID: visitorID})
	if err != nil {
		h.logger.Warn("loading signed-in session failed",
			slog.String("userID", result.User.ID),
			slog.String("error", err.Error()),
		)
	}
	return snap, err
}

// =========================================================================
// GITHUB OAUTH
// =========================================================================

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived cookie and into the redirect.
// The callback only proceeds when both match.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Create or refresh the user and issue a token
//  4. Load the session and redirect to the app
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || r.URL.Query().Get("state") != c.Value {
		h.logger.Warn("auth callback: invalid state")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/?auth=failed", http.StatusSeeOther)
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: sign-in failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/?auth=failed", http.StatusSeeOther)
		return
	}

	// A failed load is shown by the app from the session snapshot.
	_, _ = h.signedIn(w, r, result)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// =========================================================================
// EMAIL / PASSWORD
// =========================================================================

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is returned by the JSON sign-in routes.
type authResponse struct {
	User     *model.User      `json:"user"`
	Snapshot session.Snapshot `json:"snapshot"`
}

// HandleSignUp registers an email account and signs it in.
//
// HTTP: POST /auth/signup   {"email": "...", "password": "..."}
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondSignedIn(w, r, result, http.StatusCreated)
}

// HandleSignIn signs in an email account.
//
// HTTP: POST /auth/signin   {"email": "...", "password": "..."}
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondSignedIn(w, r, result, http.StatusOK)
}

func (h *AuthHandler) respondSignedIn(w http.ResponseWriter, r *http.Request, result *service.AuthResult, status int) {
	snap, err := h.signedIn(w, r, result)
	if err != nil {
		writeSnapshot(w, snap, err)
		return
	}
	writeJSON(w, status, authResponse{User: result.User, Snapshot: snap})
}

// =========================================================================
// SESSION
// =========================================================================

// HandleLogout clears the token cookie and resets the visitor's session.
//
// HTTP: POST /auth/logout
//
// WHY POST AND NOT GET?
// Logout changes state. A GET could be triggered by a prefetch or a
// cross-site image tag.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secure)
	snap, err := h.app.Logout(r.Context(), identity(r))
	writeSnapshot(w, snap, err)
}

// sessionResponse answers GET /api/session. User is null for visitors.
type sessionResponse struct {
	User     *model.User `json:"user"`
	SignedIn bool        `json:"signedIn"`
}

// HandleSession returns the currently signed-in user, if any.
//
// HTTP: GET /api/session
//
// A valid token for a user that no longer exists counts as signed out and
// the stale cookie is cleared.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if errors.Is(err, apperror.ErrNotFound) {
		auth.ClearSessionCookie(w, h.secure)
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	if err != nil {
		h.logger.Error("HandleSession: lookup failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, apperror.Unavailable("We couldn't check your session. Please try again.", err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: user, SignedIn: true})
}
