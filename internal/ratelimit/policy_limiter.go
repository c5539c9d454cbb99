package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store counts rate limit hits. Record adds one hit under key and returns
// how many hits the key saw inside the window, expired hits pruned.
type Store interface {
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// LimitExceeded reports the first limit a request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter checks requests against every limit the policy defines for
// their scopes.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a limiter enforcing policy with counters held in
// store.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{store: store, policy: policy}
}

// Allow records one hit for clientKey in every scope and reports whether all
// limits hold. When one does not, the returned LimitExceeded names it.
// Scopes the policy has no limits for cost nothing.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		exceeded, err := l.check(ctx, clientKey, scope)
		if err != nil {
			return false, nil, err
		}

		if exceeded != nil {
			return false, exceeded, nil
		}
	}

	return true, nil, nil
}

func (l *PolicyLimiter) check(ctx context.Context, clientKey string, scope Scope) (*LimitExceeded, error) {
	for _, limit := range l.policy.Limits[scope] {
		// Client, scope and window identify one counter.
		key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return nil, nil
}

// Store exposes the hit counter store for callers applying custom limits.
func (l *PolicyLimiter) Store() Store {
	return l.store
}
