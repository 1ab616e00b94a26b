// Package session issues, verifies, refreshes, and sweeps UserSession
// tokens. Tokens are opaque UUIDs except for the reserved admin user, whose
// token is a fixed well-known constant so admin tooling never has to
// discover it at runtime.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AdminUserID is the reserved user id that always receives AdminToken
// instead of a random UUID.
const AdminUserID = "admin"

// AdminToken is the fixed token issued for AdminUserID.
const AdminToken = "00000000-0000-0000-0000-000000000000"

// UserSession is one issued, possibly-refreshed session entry.
type UserSession struct {
	UserID                string
	Token                 string
	IssuedAt              time.Time
	ExpiresAt             time.Time
	SingleSessionDuration time.Duration
	Lifetime              time.Duration
}

// live reports whether s is still within its current ExpiresAt as of now.
// It says nothing about Lifetime — a session can be live yet past the point
// where a Refresh would still revive it.
func (s *UserSession) live(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// lifetimeExpired reports whether s has passed its absolute Lifetime cap,
// measured from IssuedAt, regardless of its current ExpiresAt. This is the
// only condition that justifies removing the entry outright.
func (s *UserSession) lifetimeExpired(now time.Time) bool {
	return now.Sub(s.IssuedAt) > s.Lifetime
}

type tokenTable struct {
	mu      sync.Mutex
	byToken map[string]*UserSession
}

func newTokenTable() *tokenTable {
	return &tokenTable{byToken: make(map[string]*UserSession)}
}

func newToken(userID string) string {
	if userID == AdminUserID {
		return AdminToken
	}
	return uuid.NewString()
}
