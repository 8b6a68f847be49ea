package domain

import "time"

// SessionRecord is the observational row kept in the sesiones table for every login.
// It plays no part in the login decision itself.
type SessionRecord struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	ExpiresAt time.Time
}

// IsActive reports whether the tracked session has not yet expired at the supplied moment.
func (s SessionRecord) IsActive(at time.Time) bool {
	return s.ExpiresAt.After(at)
}
