package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nenemia"

// Outcome labels shared by the pipeline counters.
const (
	OutcomeSuccess      = "success"
	OutcomeValidation   = "validation"
	OutcomeConflict     = "conflict"
	OutcomeAuthFailed   = "auth_failed"
	OutcomeInactive     = "inactive"
	OutcomeSystem       = "system"
	OutcomeRateLimited  = "rate_limited"
	OutcomeUnauthorized = "unauthorized"
)

// AuthMetrics counts pipeline results for the registration and login flows.
type AuthMetrics struct {
	Registrations    *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	TrackingFailures prometheus.Counter
}

// NewAuthMetrics registers the pipeline counters with reg, reusing collectors that are
// already registered under the same name.
func NewAuthMetrics(reg prometheus.Registerer) (*AuthMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registrations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Registration attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	logins, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	tracking := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_tracking_failures_total",
		Help:      "Session tracking upserts that failed after a successful login.",
	})
	if err := reg.Register(tracking); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register tracking collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, fmt.Errorf("existing tracking collector has unexpected type %T", already.ExistingCollector)
		}
		tracking = existing
	}

	return &AuthMetrics{
		Registrations:    registrations,
		Logins:           logins,
		TrackingFailures: tracking,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return vec, nil
}

// ObserveRegistration counts one registration result. Safe on a nil receiver.
func (m *AuthMetrics) ObserveRegistration(outcome string) {
	if m == nil || m.Registrations == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveLogin counts one login result. Safe on a nil receiver.
func (m *AuthMetrics) ObserveLogin(outcome string) {
	if m == nil || m.Logins == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// ObserveTrackingFailure counts one failed session tracking write.
func (m *AuthMetrics) ObserveTrackingFailure() {
	if m == nil || m.TrackingFailures == nil {
		return
	}
	m.TrackingFailures.Inc()
}
