package models

import "time"

// RefreshToken is an opaque single-use credential exchanged for a new
// token pair. It is deleted on first use.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether t can no longer be exchanged at now.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return !t.Expires.After(now)
}
