package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Fast (no disk I/O), isolated (each test gets its own database), and clean
// (destroyed when the connection closes).
//
// newTestDB is a test helper. The t.Helper() call tells Go's test framework
// to report failures at the CALLER's line number, not inside this function.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// t.Cleanup is like defer, but scoped to the test — works in subtests too.
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRepos returns both repositories over one fresh database.
func newTestRepos(t *testing.T) (*UserRepo, *EntryRepo) {
	t.Helper()
	db := newTestDB(t)
	return NewUserRepo(db), NewEntryRepo(db)
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, users *UserRepo, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:       username,
		HashedPassword: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$fakehashfortesting",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	users, _ := newTestRepos(t)

	user := &model.User{
		Username:       "journaler",
		HashedPassword: "some-hash",
	}

	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.UserID <= 0 {
		t.Errorf("Create() did not set a positive user.UserID, got %d", user.UserID)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	users, _ := newTestRepos(t)

	createTestUser(t, users, "taken")

	duplicate := &model.User{
		Username:       "taken", // same username
		HashedPassword: "different-hash",
	}
	err := users.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for a duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_IDsIncrease(t *testing.T) {
	users, _ := newTestRepos(t)

	first := createTestUser(t, users, "first")
	second := createTestUser(t, users, "second")

	if second.UserID <= first.UserID {
		t.Errorf("user ids should increase: first=%d second=%d", first.UserID, second.UserID)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByUsername(t *testing.T) {
	users, _ := newTestRepos(t)
	created := createTestUser(t, users, "findme")

	found, err := users.GetByUsername(context.Background(), "findme")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}

	if found.UserID != created.UserID {
		t.Errorf("UserID = %d, want %d", found.UserID, created.UserID)
	}
	// The hash must come back — login verification depends on it.
	if found.HashedPassword != created.HashedPassword {
		t.Error("GetByUsername() did not return the stored password hash")
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	users, _ := newTestRepos(t)

	_, err := users.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetByID(t *testing.T) {
	users, _ := newTestRepos(t)
	created := createTestUser(t, users, "byid")

	found, err := users.GetByID(context.Background(), created.UserID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Username != "byid" {
		t.Errorf("Username = %q, want %q", found.Username, "byid")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	users, _ := newTestRepos(t)

	_, err := users.GetByID(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GITHUB UPSERT TESTS
// =========================================================================

func TestUpsertGitHub_CreatesOnFirstLogin(t *testing.T) {
	users, _ := newTestRepos(t)

	user, err := users.UpsertGitHub(context.Background(), 424242, "octocat")
	if err != nil {
		t.Fatalf("UpsertGitHub() error = %v", err)
	}

	if user.Username != "octocat" {
		t.Errorf("Username = %q, want %q", user.Username, "octocat")
	}
	if user.GitHubID == nil || *user.GitHubID != 424242 {
		t.Errorf("GitHubID = %v, want 424242", user.GitHubID)
	}
	if user.HashedPassword != "" {
		t.Error("OAuth accounts must not carry a password hash")
	}
}

func TestUpsertGitHub_ReturnsSameUserOnSecondLogin(t *testing.T) {
	users, _ := newTestRepos(t)

	first, err := users.UpsertGitHub(context.Background(), 424242, "octocat")
	if err != nil {
		t.Fatalf("UpsertGitHub() first login error = %v", err)
	}

	second, err := users.UpsertGitHub(context.Background(), 424242, "octocat")
	if err != nil {
		t.Fatalf("UpsertGitHub() second login error = %v", err)
	}

	if second.UserID != first.UserID {
		t.Errorf("second login UserID = %d, want %d (same account)", second.UserID, first.UserID)
	}
}

func TestUpsertGitHub_UsernameCollisionFallsBack(t *testing.T) {
	users, _ := newTestRepos(t)

	// A password user already owns the name "octocat"
	createTestUser(t, users, "octocat")

	user, err := users.UpsertGitHub(context.Background(), 424242, "octocat")
	if err != nil {
		t.Fatalf("UpsertGitHub() error = %v", err)
	}

	if user.Username != "octocat-gh424242" {
		t.Errorf("Username = %q, want the derived fallback name", user.Username)
	}
}
