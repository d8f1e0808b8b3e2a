package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/model"
	"github.com/sakif/code-journal/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository on top of the shared pool.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a UserRepo backed by db.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `user_id, username, hashed_password, github_id, created_at`

// Create inserts a new user row.
//
// The UNIQUE constraint on username is the single source of truth for
// duplicates: we attempt the INSERT and translate a constraint violation
// into a Conflict error. Checking with a prior SELECT would race — two
// concurrent sign-ups for the same name could both pass the check.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()

	result, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (username, hashed_password, github_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.Username,
		user.HashedPassword,
		user.GitHubID,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	// LastInsertId returns the AUTOINCREMENT value SQLite assigned — that's
	// the caller-visible userId.
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.UserID = id

	return nil
}

// GetByUsername retrieves a user by their unique username.
// Returns apperror.ErrNotFound if no user exists with that name.
//
// The returned record includes the password hash — it is for credential
// verification only and must never reach a response body.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanUser(r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	), username)
}

// GetByID retrieves a user by their internal id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.scanUser(r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id,
	), fmt.Sprint(id))
}

// UpsertGitHub finds or creates the journal account linked to a GitHub user.
//
// First login: INSERT a passwordless row keyed by github_id. The GitHub
// login doubles as the journal username; if a password user already claimed
// that name, a "<login>-gh<id>" fallback keeps the UNIQUE constraint happy.
// Subsequent logins: return the existing row unchanged.
func (r *UserRepo) UpsertGitHub(ctx context.Context, githubID int64, login string) (*model.User, error) {
	existing, err := r.scanUser(r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID,
	), login)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		Username: login,
		GitHubID: &githubID,
	}
	if err := r.Create(ctx, user); err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		// Username taken by a password account — retry with a derived name.
		user.Username = fmt.Sprintf("%s-gh%d", login, githubID)
		if err := r.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// scanUser reads one user row and maps sql.ErrNoRows to NotFound.
// `ref` is only used in error messages.
func (r *UserRepo) scanUser(row *sql.Row, ref string) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.HashedPassword,
		&u.GitHubID,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", ref)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", ref, err)
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
//
// The pure-Go driver doesn't export a typed constraint error, but the
// message is stable ("UNIQUE constraint failed: table.column"), so matching
// on it is the accepted idiom.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
