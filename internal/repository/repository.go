// Package repository defines the data-access interfaces implemented by the
// storage backends (currently SQLite).
//
// Services depend on these interfaces, never on a concrete database type —
// that keeps the business layer testable with in-memory mocks and leaves the
// storage engine swappable.
package repository

import (
	"context"

	"github.com/sakif/code-journal/internal/model"
)

// UserRepository persists journal accounts.
type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the
	// username is already taken.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername returns the user with the given username, including the
	// password hash (needed for login verification — callers must never
	// serialize it). Returns apperror.ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID returns the user with the given id.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// UpsertGitHub finds or creates the account linked to a GitHub user.
	// First OAuth login inserts a passwordless account; later logins return
	// the existing one.
	UpsertGitHub(ctx context.Context, githubID int64, login string) (*model.User, error)
}

// EntryRepository persists journal entries.
//
// Every method takes the owning user's id and bakes it into the query's
// WHERE clause. Ownership is never checked by fetching first and comparing
// in application code — the predicate in SQL is atomic and race-free, and a
// non-owned entry is indistinguishable from a nonexistent one.
type EntryRepository interface {
	Create(ctx context.Context, entry *model.Entry) error
	List(ctx context.Context, userID int64) ([]model.Entry, error)
	Get(ctx context.Context, userID, entryID int64) (*model.Entry, error)
	Update(ctx context.Context, entry *model.Entry) error
	Delete(ctx context.Context, userID, entryID int64) error
}
