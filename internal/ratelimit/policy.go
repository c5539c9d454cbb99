package ratelimit

import "time"

// LimitConfig is a single sliding-window limit: at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits enforced for them. A scope may carry
// several windows, typically a short burst window plus a sustained one.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// PolicyBuilder assembles a Policy incrementally.
type PolicyBuilder struct {
	policy *Policy
}

// NewPolicyBuilder creates an empty policy builder.
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{policy: &Policy{Limits: make(map[Scope][]LimitConfig)}}
}

// AddLimit appends a limit of max requests per window for the scope.
func (b *PolicyBuilder) AddLimit(scope Scope, max int64, window time.Duration) *PolicyBuilder {
	b.policy.Limits[scope] = append(b.policy.Limits[scope], LimitConfig{Window: window, Max: max})

	return b
}

// Build returns the assembled policy.
func (b *PolicyBuilder) Build() *Policy {
	return b.policy
}

// DefaultPolicy returns the limits applied when nothing else is configured.
// Reads are allowed a higher sustained rate than writes; the global scope
// catches clients that spread their traffic across endpoints.
func DefaultPolicy() *Policy {
	return NewPolicyBuilder().
		AddLimit(ScopeGlobal, 20, time.Second).
		AddLimit(ScopeGlobal, 300, time.Minute).
		AddLimit(ScopeRead, 240, time.Minute).
		AddLimit(ScopeWrite, 60, time.Minute).
		Build()
}
