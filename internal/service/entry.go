package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/code-journal/internal/apperror"
	"github.com/sakif/code-journal/internal/model"
	"github.com/sakif/code-journal/internal/repository"
)

// Validation constants for journal entries.
const (
	MaxTitleLength = 200
	MaxNotesLength = 10000
)

// EntryService handles business logic for journal entries.
//
// Every method takes the caller's resolved Identity as its first domain
// argument — the service never trusts a userId from a request body, only
// the one the token middleware verified. Ownership enforcement itself lives
// in the repository's WHERE clauses; this layer contributes input validation
// and consistent error semantics.
type EntryService struct {
	repo   repository.EntryRepository
	logger *slog.Logger
}

// NewEntryService creates a new EntryService.
func NewEntryService(repo repository.EntryRepository, logger *slog.Logger) *EntryService {
	return &EntryService{
		repo:   repo,
		logger: logger,
	}
}

// validateFields checks the writable entry fields shared by Create and
// Update. Title and notes are required; the photo URL may be empty.
func validateFields(title, notes string) error {
	if strings.TrimSpace(title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(notes) == "" {
		return apperror.ValidationFailed("notes", "notes are required")
	}
	if len(notes) > MaxNotesLength {
		return apperror.ValidationFailed("notes",
			fmt.Sprintf("notes must be %d characters or less", MaxNotesLength))
	}
	return nil
}

// Create validates and saves a new entry owned by the caller.
func (s *EntryService) Create(ctx context.Context, identity model.Identity, title, notes, photoURL string) (*model.Entry, error) {
	if err := validateFields(title, notes); err != nil {
		return nil, err
	}

	entry := &model.Entry{
		UserID:   identity.UserID,
		Title:    strings.TrimSpace(title),
		Notes:    notes,
		PhotoURL: strings.TrimSpace(photoURL),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to create entry",
			slog.Int64("userID", identity.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	s.logger.Info("entry created",
		slog.Int64("entryID", entry.EntryID),
		slog.Int64("userID", identity.UserID),
	)

	return entry, nil
}

// List returns all of the caller's entries, newest first.
func (s *EntryService) List(ctx context.Context, identity model.Identity) ([]model.Entry, error) {
	entries, err := s.repo.List(ctx, identity.UserID)
	if err != nil {
		s.logger.Error("failed to list entries",
			slog.Int64("userID", identity.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	return entries, nil
}

// Get returns a single entry owned by the caller.
//
// A non-positive id cannot name an existing entry, so it short-circuits to
// NotFound without touching the store — the route contract for reads only
// distinguishes "yours" from "not yours/nonexistent" (404).
func (s *EntryService) Get(ctx context.Context, identity model.Identity, entryID int64) (*model.Entry, error) {
	if entryID <= 0 {
		return nil, apperror.NotFound("entry", fmt.Sprint(entryID))
	}

	return s.repo.Get(ctx, identity.UserID, entryID)
}

// Update replaces the writable fields of an owned entry and returns the
// stored result.
//
// The id must be a positive integer (ValidationError — checked before any
// store access, per the write contract). The UPDATE itself carries the
// ownership predicate; there is no fetch-then-check window for another
// request to slip through.
func (s *EntryService) Update(ctx context.Context, identity model.Identity, entryID int64, title, notes, photoURL string) (*model.Entry, error) {
	if entryID <= 0 {
		return nil, apperror.ValidationFailed("entryId", "entryId must be a positive integer")
	}
	if err := validateFields(title, notes); err != nil {
		return nil, err
	}

	entry := &model.Entry{
		EntryID:  entryID,
		UserID:   identity.UserID,
		Title:    strings.TrimSpace(title),
		Notes:    notes,
		PhotoURL: strings.TrimSpace(photoURL),
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err // NotFound propagates typed
	}

	// Re-read the canonical row so the response carries created_at and the
	// exact stored timestamps.
	updated, err := s.repo.Get(ctx, identity.UserID, entryID)
	if err != nil {
		return nil, fmt.Errorf("reloading updated entry: %w", err)
	}

	s.logger.Info("entry updated",
		slog.Int64("entryID", entryID),
		slog.Int64("userID", identity.UserID),
	)

	return updated, nil
}

// Delete removes an owned entry.
// Same entryId validation as Update; NotFound covers both "doesn't exist"
// and "not yours".
func (s *EntryService) Delete(ctx context.Context, identity model.Identity, entryID int64) error {
	if entryID <= 0 {
		return apperror.ValidationFailed("entryId", "entryId must be a positive integer")
	}

	if err := s.repo.Delete(ctx, identity.UserID, entryID); err != nil {
		return err
	}

	s.logger.Info("entry deleted",
		slog.Int64("entryID", entryID),
		slog.Int64("userID", identity.UserID),
	)
	return nil
}
