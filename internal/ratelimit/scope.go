package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope names a traffic class with its own limit budget. A request counts
// against every scope resolved for it.
type Scope string

const (
	// ScopeGlobal counts every request a client makes.
	ScopeGlobal Scope = "global"
	// ScopeRead counts paste reads, stats and listings.
	ScopeRead Scope = "read"
	// ScopeWrite counts creates, overwrites and deletes.
	ScopeWrite Scope = "write"
)

// MetadataKey is where operations carry their EndpointConfig in huma
// operation metadata.
const MetadataKey = "rateLimit"

// EndpointConfig tunes rate limiting for a single operation.
type EndpointConfig struct {
	// Scope pins the request's class instead of deriving it from the
	// method. Ignored when Limits is set.
	Scope Scope

	// Limits replaces the policy for this endpoint entirely; the default
	// scope limits no longer apply.
	Limits []LimitConfig

	// Disabled exempts the endpoint from rate limiting.
	Disabled bool
}

// ScopeResolver classifies a request into the scopes it counts against.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScopeResolver classifies by HTTP method: safe methods read,
// everything else writes. Every request also counts globally.
type MethodScopeResolver struct{}

// NewMethodScopeResolver creates a method-based scope resolver.
func NewMethodScopeResolver() *MethodScopeResolver {
	return &MethodScopeResolver{}
}

// Resolve returns the scopes for the request's method.
func (r *MethodScopeResolver) Resolve(ctx huma.Context) []Scope {
	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// OperationScopeResolver honors a scope pinned in operation metadata and
// falls back to method classification otherwise.
type OperationScopeResolver struct {
	fallback *MethodScopeResolver
}

// NewOperationScopeResolver creates a metadata-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{fallback: NewMethodScopeResolver()}
}

// Resolve returns the scopes for the request, preferring a pinned scope.
func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	cfg := GetEndpointConfig(ctx)
	if cfg == nil || cfg.Scope == "" {
		return r.fallback.Resolve(ctx)
	}

	return []Scope{ScopeGlobal, cfg.Scope}
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, or
// nil when the operation carries none.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
