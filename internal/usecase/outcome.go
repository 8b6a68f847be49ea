package usecase

import (
	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
)

// OutcomeKind tags the terminal state of a registration or login attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeValidationFailed
	OutcomeConflict
	OutcomeAuthFailed
	OutcomeInactive
	OutcomeRateLimited
	OutcomeSystemFailure
)

// String returns the metrics label for k.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return telemetry.OutcomeSuccess
	case OutcomeValidationFailed:
		return telemetry.OutcomeValidation
	case OutcomeConflict:
		return telemetry.OutcomeConflict
	case OutcomeAuthFailed:
		return telemetry.OutcomeAuthFailed
	case OutcomeInactive:
		return telemetry.OutcomeInactive
	case OutcomeRateLimited:
		return telemetry.OutcomeRateLimited
	case OutcomeSystemFailure:
		return telemetry.OutcomeSystem
	default:
		return "unknown"
	}
}

// Outcome is what a pipeline hands back to the transport layer. Err keeps the
// underlying cause for logging and is never shown to the visitor.
type Outcome struct {
	Kind OutcomeKind
	// Errors lists validation messages when Kind is OutcomeValidationFailed.
	Errors []string
	// User is the sanitized account on success.
	User *domain.User
	// ReturnTo is the stashed local URL to resume after a successful login.
	ReturnTo string
	Err      error
}

// OK reports whether the pipeline succeeded.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

func failed(kind OutcomeKind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}
