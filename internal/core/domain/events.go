package domain

import "time"

// UserRegisteredEvent represents the payload for user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Phone        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserLoggedInEvent represents the payload for user.logged_in messages.
type UserLoggedInEvent struct {
	EventID   string
	UserID    string
	IP        string
	UserAgent string
	Remember  bool
	LoggedAt  time.Time
	Metadata  map[string]any
}
