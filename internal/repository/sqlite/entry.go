package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/model"
	"github.com/sakif/code-journal/internal/repository"
)

// compile-time check that *EntryRepo implements repository.EntryRepository
var _ repository.EntryRepository = (*EntryRepo)(nil)

// EntryRepo implements repository.EntryRepository on top of the shared pool.
//
// OWNERSHIP IN THE WHERE CLAUSE:
// Every query below that targets a single entry filters on BOTH entry_id AND
// user_id. A user asking for someone else's entry gets zero rows, which maps
// to NotFound — exactly the same answer as for an entry that doesn't exist.
// There is deliberately no "fetch, then compare owner in Go" step: the SQL
// predicate is atomic, so no interleaving of requests can slip an update or
// delete past the ownership check.
//
// All values travel through ? placeholders. Never build these queries with
// fmt.Sprintf — that's how SQL injection happens.
type EntryRepo struct {
	db *DB
}

// NewEntryRepo creates an EntryRepo backed by db.
func NewEntryRepo(db *DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// Create inserts a new entry owned by entry.UserID.
// On return the caller's struct carries the generated EntryID and timestamps.
func (r *EntryRepo) Create(ctx context.Context, entry *model.Entry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO entries (user_id, title, notes, photo_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID,
		entry.Title,
		entry.Notes,
		entry.PhotoURL,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new entry id: %w", err)
	}
	entry.EntryID = id

	return nil
}

// List retrieves all of one user's entries, newest first.
//
// entry_id DESC equals insertion order reversed — AUTOINCREMENT ids only
// grow, so no timestamp sort is needed.
func (r *EntryRepo) List(ctx context.Context, userID int64) ([]model.Entry, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT entry_id, user_id, title, notes, photo_url, created_at, updated_at
		 FROM entries
		 WHERE user_id = ?
		 ORDER BY entry_id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entries: %w", err)
	}
	// sql.Rows holds a pool connection — forgetting Close leaks it.
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(
			&e.EntryID, &e.UserID, &e.Title, &e.Notes, &e.PhotoURL,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning entry row: %w", err)
		}
		entries = append(entries, e)
	}

	// rows.Err() catches failures that happened during iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entries: %w", err)
	}

	return entries, nil
}

// Get retrieves a single entry owned by userID.
// Returns apperror.ErrNotFound for both "no such entry" and "someone else's
// entry" — the two cases must be indistinguishable to the caller.
func (r *EntryRepo) Get(ctx context.Context, userID, entryID int64) (*model.Entry, error) {
	var e model.Entry

	err := r.db.conn.QueryRowContext(ctx,
		`SELECT entry_id, user_id, title, notes, photo_url, created_at, updated_at
		 FROM entries
		 WHERE entry_id = ? AND user_id = ?`,
		entryID, userID,
	).Scan(
		&e.EntryID, &e.UserID, &e.Title, &e.Notes, &e.PhotoURL,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("entry", fmt.Sprint(entryID))
		}
		return nil, fmt.Errorf("sqlite: getting entry %d: %w", entryID, err)
	}

	return &e, nil
}

// Update modifies an entry in place, guarded by the ownership predicate.
//
// RowsAffected == 0 means the WHERE clause matched nothing — either the
// entry doesn't exist or the caller doesn't own it. Both are NotFound.
func (r *EntryRepo) Update(ctx context.Context, entry *model.Entry) error {
	entry.UpdatedAt = time.Now()

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE entries
		 SET title = ?, notes = ?, photo_url = ?, updated_at = ?
		 WHERE entry_id = ? AND user_id = ?`,
		entry.Title,
		entry.Notes,
		entry.PhotoURL,
		entry.UpdatedAt,
		entry.EntryID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating entry %d: %w", entry.EntryID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("entry", fmt.Sprint(entry.EntryID))
	}

	return nil
}

// Delete removes an entry owned by userID. Same RowsAffected pattern as
// Update for the not-found/not-owned case.
func (r *EntryRepo) Delete(ctx context.Context, userID, entryID int64) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM entries WHERE entry_id = ? AND user_id = ?`,
		entryID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting entry %d: %w", entryID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("entry", fmt.Sprint(entryID))
	}

	return nil
}
