package usecase

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 6
	phoneDigits       = 10
)

// Validator applies the form rules. Every rule runs; all violations are reported
// in a fixed order: presence checks first, then format checks.
type Validator struct {
	v *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateRegistration checks a normalized registration submission.
func (v *Validator) ValidateRegistration(in RegistrationInput) []string {
	var msgs []string

	if in.Email == "" {
		msgs = append(msgs, MsgEmailRequired)
	}
	if in.Phone == "" {
		msgs = append(msgs, MsgPhoneRequired)
	}
	if in.Password == "" {
		msgs = append(msgs, MsgPasswordRequired)
	}
	if in.Email != "" && !v.validEmail(in.Email) {
		msgs = append(msgs, MsgEmailFormat)
	}
	if in.Password != "" && utf8.RuneCountInString(in.Password) < minPasswordLength {
		msgs = append(msgs, MsgPasswordLength)
	}
	if in.Phone != "" && !validPhone(in.Phone) {
		msgs = append(msgs, MsgPhoneFormat)
	}

	return msgs
}

// ValidateLogin checks a normalized login submission. Login has no phone field and
// no length rule: a short password simply fails verification.
func (v *Validator) ValidateLogin(in LoginInput) []string {
	var msgs []string

	if in.Email == "" {
		msgs = append(msgs, MsgEmailRequired)
	}
	if in.Password == "" {
		msgs = append(msgs, MsgPasswordRequired)
	}
	if in.Email != "" && !v.validEmail(in.Email) {
		msgs = append(msgs, MsgEmailFormat)
	}

	return msgs
}

func (v *Validator) validEmail(email string) bool {
	return v.v.Var(email, "required,email") == nil
}

func validPhone(phone string) bool {
	if len(phone) != phoneDigits {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}
