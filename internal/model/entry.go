package model

import "time"

// Entry represents a single journal record owned by one user.
// The `json:"..."` tags tell Go's encoding/json package how to serialize
// this struct — field names match what the web client already expects
// (entryId, photoUrl, etc.).
//
// UserID is the owning user's id. Every read and write of an entry is
// filtered by it in the repository layer, so one user can never see or
// touch another user's entries.
type Entry struct {
	EntryID   int64     `json:"entryId"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	PhotoURL  string    `json:"photoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
