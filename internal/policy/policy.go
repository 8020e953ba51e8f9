package policy

import (
	"context"
	"fmt"
	"time"
)

// Name identifies one of the closed set of cancellation policies.
type Name string

const (
	Flexible Name = "flexible"
	Moderate Name = "moderate"
	Strict   Name = "strict"
)

// Policy maps time-to-appointment to cancellation fee eligibility.
type Policy struct {
	Name           Name
	HoursBefore    float64
	LateFeePercent int
}

var policies = map[Name]Policy{
	Flexible: {Name: Flexible, HoursBefore: 2, LateFeePercent: 0},
	Moderate: {Name: Moderate, HoursBefore: 24, LateFeePercent: 50},
	Strict:   {Name: Strict, HoursBefore: 48, LateFeePercent: 100},
}

func ByName(n Name) (Policy, bool) {
	p, ok := policies[n]
	return p, ok
}

func ParseName(raw string) (Name, error) {
	n := Name(raw)
	if _, ok := policies[n]; !ok {
		return "", fmt.Errorf("unknown cancellation policy %q", raw)
	}
	return n, nil
}

// Decision is the outcome of a cancellation eligibility check.
type Decision struct {
	Allowed    bool
	FeePercent int
}

// CanCancel is pure: an appointment can be cancelled free of charge at or
// before the policy threshold, with the late fee inside it, and not at all
// once the start time has passed.
func CanCancel(appointmentStart time.Time, p Policy, now time.Time) Decision {
	hoursUntil := appointmentStart.Sub(now).Hours()
	switch {
	case hoursUntil >= p.HoursBefore:
		return Decision{Allowed: true, FeePercent: 0}
	case hoursUntil < 0:
		return Decision{Allowed: false}
	default:
		return Decision{Allowed: true, FeePercent: p.LateFeePercent}
	}
}

// Provider resolves the cancellation policy for a business. Business profile
// management lives in another service; deployments without it use the static
// provider.
type Provider interface {
	PolicyFor(ctx context.Context, businessID string) (Policy, error)
}

type staticProvider struct {
	policy Policy
}

func NewStaticProvider(p Policy) Provider {
	return &staticProvider{policy: p}
}

func (p *staticProvider) PolicyFor(_ context.Context, _ string) (Policy, error) {
	return p.policy, nil
}
