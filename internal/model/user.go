// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered journal account.
//
// WHY HashedPassword HAS json:"-"?
// The struct is what repositories scan rows into, so it has to carry the
// password hash internally. But a User is also what handlers serialize back
// to clients, and the hash must NEVER leave the server. The `json:"-"` tag
// tells encoding/json to always omit the field — one tag instead of a
// separate "public view" struct that could drift out of sync.
//
// WHY GitHubID *int64 (a pointer)?
// Password-registered users have no GitHub identity at all. A pointer makes
// "absent" explicit (nil) and maps cleanly to a nullable column, whereas 0
// would collide with "GitHub user number zero" semantics.
type User struct {
	UserID         int64     `json:"userId"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"` // never serialized to clients
	GitHubID       *int64    `json:"-"` // set only for OAuth-registered accounts
	CreatedAt      time.Time `json:"createdAt"`
}

// Identity is the {userId, username} pair resolved from a valid session
// token. It is the only thing protected handlers know about the caller, and
// the only value data access is scoped by.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Public returns the client-facing view of the user.
// Used in token claims and the sign-in response body.
func (u *User) Public() Identity {
	return Identity{UserID: u.UserID, Username: u.Username}
}
