// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and domain types, never *http.Request, and
// return domain errors (apperror), never status codes. The handler layer
// translates in both directions. Dependencies arrive through constructors as
// interfaces, so tests swap in mocks without touching SQLite.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/auth"
	"github.com/sakif/code-journal/internal/model"
	"github.com/sakif/code-journal/internal/repository"
)

const (
	MaxUsernameLength = 50
	MaxPasswordLength = 256
)

// invalidLoginMessage is shared by every sign-in failure path. Whether the
// username doesn't exist or the password is wrong, the caller sees the same
// error — distinct responses would let an attacker enumerate usernames.
const invalidLoginMessage = "invalid login"

// AuthService handles registration and login.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user records
//   - tokens    *auth.TokenService        → issue/validate session JWTs
//   - passwords *auth.PasswordService     → argon2id hashing
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Called from server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by login operations. It bundles the user's public
// identity and the issued JWT so the handler can respond in one step.
type AuthResult struct {
	User  model.Identity
	Token string
}

// Register creates a new account from a username and password.
//
// Rules:
//   - both fields are required (ValidationError)
//   - the username must be unique (ConflictError, raised by the UNIQUE
//     constraint in the repository — no racy pre-check here)
//   - the password is argon2id-hashed before it goes anywhere near the
//     database; a hashing failure is an internal error, never a client error
//
// The returned User carries no password hash when serialized (json:"-").
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(password) > MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or less", MaxPasswordLength))
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		// Not the client's fault — surfaces as a 500 at the boundary.
		s.logger.Error("password hashing failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:       username,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err // Conflict propagates typed; anything else is a 500
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.UserID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues a session token.
//
// EVERY failure is the same generic Unauthorized error: missing fields,
// unknown username, passwordless OAuth account, wrong password. See
// invalidLoginMessage.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Unauthorized(invalidLoginMessage)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(invalidLoginMessage)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	// OAuth-registered accounts have an empty hash; Verify rejects it as
	// malformed, which lands in the same generic branch as a wrong password.
	if err := s.passwords.Verify(user.HashedPassword, password); err != nil {
		s.logger.Info("failed login attempt", slog.String("username", username))
		return nil, apperror.Unauthorized(invalidLoginMessage)
	}

	return s.issueToken(user)
}

// LoginWithGitHub completes the OAuth callback: find-or-create the journal
// account linked to the GitHub profile and issue the same JWT a password
// sign-in would.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.UpsertGitHub(ctx, ghUser.ID, ghUser.Login)
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting GitHub user %d: %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.UserID),
		slog.String("username", user.Username),
	)

	return s.issueToken(user)
}

// GetUserByID returns the user for the given internal id.
//
// Used by the /api/auth/me handler after the middleware has already
// validated the JWT.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("service/auth: user id must be positive")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	identity := user.Public()

	token, err := s.tokens.Generate(identity)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.UserID, err)
	}

	s.logger.Info("session token issued", slog.Int64("userID", user.UserID))

	return &AuthResult{User: identity, Token: token}, nil
}
