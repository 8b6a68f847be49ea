package usecase

import "strings"

// RegistrationInput is the raw registration form submission.
type RegistrationInput struct {
	Email    string
	Phone    string
	Password string
	// ClientIP scopes rate limiting and is recorded on the registration event.
	ClientIP string
}

// Normalize trims surrounding whitespace from every submitted field.
func (in RegistrationInput) Normalize() RegistrationInput {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Password = strings.TrimSpace(in.Password)
	in.ClientIP = strings.TrimSpace(in.ClientIP)
	return in
}

// LoginInput is the raw login form submission plus request metadata.
type LoginInput struct {
	Email     string
	Password  string
	Remember  bool
	ClientIP  string
	UserAgent string
}

// Normalize trims surrounding whitespace from the credentials.
func (in LoginInput) Normalize() LoginInput {
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.ClientIP = strings.TrimSpace(in.ClientIP)
	return in
}
