package usecase

import (
	"testing"

	"github.com/chinobetoska/nenemi-a-html/internal/infra/telemetry"
)

func TestOutcomeKindLabelsMatchMetrics(t *testing.T) {
	cases := map[OutcomeKind]string{
		OutcomeSuccess:          telemetry.OutcomeSuccess,
		OutcomeValidationFailed: telemetry.OutcomeValidation,
		OutcomeConflict:         telemetry.OutcomeConflict,
		OutcomeAuthFailed:       telemetry.OutcomeAuthFailed,
		OutcomeInactive:         telemetry.OutcomeInactive,
		OutcomeRateLimited:      telemetry.OutcomeRateLimited,
		OutcomeSystemFailure:    telemetry.OutcomeSystem,
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("kind %d: expected label %q, got %q", int(kind), want, got)
		}
	}
	if got := OutcomeKind(99).String(); got != "unknown" {
		t.Fatalf("expected unknown label, got %q", got)
	}
}
