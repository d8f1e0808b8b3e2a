package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/auth"
	"github.com/sakif/code-journal/internal/model"
	"github.com/sakif/code-journal/internal/service"
)

// AuthHandler manages sign-up, sign-in, and the optional GitHub OAuth flow.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignUp         → create an account from {username, password}
//   - HandleSignIn         → verify credentials, issue a bearer token
//   - HandleMe             → return the authenticated user's profile
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → receive the code, upsert the user, issue a token
//
// Handlers only parse HTTP and translate errors; every rule lives in
// service.AuthService.
type AuthHandler struct {
	service *service.AuthService
	github  *auth.GitHubProvider // nil when OAuth is not configured
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil, in which case
// the OAuth routes are simply never registered.
func NewAuthHandler(service *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		github:  github,
		logger:  logger,
	}
}

// credentialsRequest is the body of both sign-up and sign-in.
//
// EXPLICIT REQUEST STRUCTS:
// Decoding into a typed struct (instead of a map) rejects wrong JSON types
// up front and makes the accepted shape visible in one place.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// signInResponse matches what the journal client expects:
// {"token": "...", "user": {"userId": 1, "username": "..."}}
type signInResponse struct {
	Token string         `json:"token"`
	User  model.Identity `json:"user"`
}

// HandleSignUp registers a new account.
//
// HTTP: POST /api/auth/sign-up
// REQUEST BODY: {"username": "...", "password": "..."}
// RESPONSES: 201 created user, 400 missing field, 409 username taken,
// 500 hashing/store failure.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	// model.User excludes the password hash from JSON via its struct tag.
	writeJSON(w, http.StatusCreated, user)
}

// HandleSignIn verifies credentials and issues a session token.
//
// HTTP: POST /api/auth/sign-in
// RESPONSES: 201 {token, user}, 401 invalid login (same body for unknown
// username and wrong password).
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A malformed body can't possibly authenticate; same generic 401.
		writeError(w, apperror.Unauthorized("invalid login"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signInResponse{Token: result.Token, User: result.User})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/auth/me
// Auth: Required (RequireAuth sets the identity in context)
//
// Lets the client check on load whether its stored token is still good.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Should never happen behind RequireAuth, but be safe.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed",
			slog.Int64("userID", identity.UserID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state string goes into a short-lived HttpOnly cookie before the
// redirect. The callback verifies GitHub echoed the same state back, which
// proves the flow started here and not on an attacker's page.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
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
//  3. Find-or-create the journal account and issue a token
//  4. Respond with the same {token, user} payload as password sign-in —
//     the client stores it exactly like a password session
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state missing or mismatched")
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// The user may have denied authorization on GitHub
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied", slog.String("error", errParam))
		writeError(w, apperror.Unauthorized("GitHub authorization was denied"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeError(w, err) // opaque 500 — exchange errors aren't typed
		return
	}

	result, err := h.service.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signInResponse{Token: result.Token, User: result.User})
}
