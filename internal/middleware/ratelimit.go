package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/pastebox/internal/ratelimit"
	"go.uber.org/zap"
)

// clientKey identifies a client for rate limiting. Address and User-Agent
// together hash into an opaque key, so limit counters never store raw
// addresses.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientAddr(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

// PolicyRateLimiter enforces the rate limit policy on every operation. The
// resolver decides which scopes a request counts against; the limiter then
// checks each applicable window.
//
// Operations opt out of the policy through ratelimit.MetadataKey in their
// metadata: probes disable limiting entirely, write endpoints pin their own
// limits, and an explicit Scope overrides method-based detection.
//
// Rejections carry Retry-After and X-RateLimit-Limit headers so clients can
// back off instead of retrying blind.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	enforcer := &policyEnforcer{
		api:      api,
		limiter:  limiter,
		resolver: resolver,
		logger:   logger,
	}

	return enforcer.enforce
}

type policyEnforcer struct {
	api      huma.API
	limiter  *ratelimit.PolicyLimiter
	resolver ratelimit.ScopeResolver
	logger   *zap.Logger
}

func (e *policyEnforcer) enforce(ctx huma.Context, next func(huma.Context)) {
	if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil {
		switch {
		case cfg.Disabled:
			next(ctx)

			return
		case len(cfg.Limits) > 0:
			if e.allowPinned(ctx, cfg.Limits) {
				next(ctx)
			}

			return
		}
		// A config carrying only a scope falls through to the policy;
		// the resolver reads the scope from the metadata itself.
	}

	allowed, exceeded, err := e.limiter.Allow(ctx.Context(), clientKey(ctx), e.resolver.Resolve(ctx))
	if err != nil {
		e.fail(ctx, "rate limit check failed", err)

		return
	}

	if !allowed {
		e.reject(ctx, string(exceeded.Scope)+" scope", exceeded.Count, exceeded.Config)

		return
	}

	next(ctx)
}

// allowPinned checks the limits an operation pinned in its metadata and
// reports whether the request may proceed. Counters are keyed by the route
// template ("/{id}"), not the concrete path, so every paste read by one
// client shares a counter no matter which paste.
func (e *policyEnforcer) allowPinned(ctx huma.Context, limits []ratelimit.LimitConfig) bool {
	op := ctx.Operation()
	if op == nil {
		e.fail(ctx, "rate limit metadata without an operation", errors.New("missing operation in context"))

		return false
	}

	client := clientKey(ctx)

	for _, limit := range limits {
		// Client, route template and window identify one counter.
		key := fmt.Sprintf("%s:custom:%s:%d", client, op.Path, limit.Window.Milliseconds())

		count, err := e.limiter.Store().Record(ctx.Context(), key, limit.Window)
		if err != nil {
			e.fail(ctx, "pinned rate limit check failed", err)

			return false
		}

		if count > limit.Max {
			e.reject(ctx, op.Path, count, limit)

			return false
		}
	}

	return true
}

// reject answers a request that ran into the limit named by what, either a
// scope or a route template.
func (e *policyEnforcer) reject(ctx huma.Context, what string, count int64, limit ratelimit.LimitConfig) {
	retryAfter := int(limit.Window.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	ctx.SetHeader("Retry-After", strconv.Itoa(retryAfter))
	ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(limit.Max, 10))

	e.logger.Warn("rate limit exceeded",
		zap.String("limit", what),
		zap.String("path", operationPath(ctx)),
		zap.String("method", ctx.Method()),
		zap.Int64("count", count),
		zap.Int64("max", limit.Max),
		zap.Duration("window", limit.Window),
		zap.String("client", clientAddr(ctx)),
	)

	_ = huma.WriteErr(e.api, ctx, http.StatusTooManyRequests,
		fmt.Sprintf("rate limit exceeded: %s, %d/%d requests in %s", what, count, limit.Max, limit.Window))
}

func (e *policyEnforcer) fail(ctx huma.Context, msg string, err error) {
	e.logger.Error(msg, zap.String("path", operationPath(ctx)), zap.Error(err))

	_ = huma.WriteErr(e.api, ctx, http.StatusInternalServerError, "internal server error", err)
}

// operationPath returns the route template for logging, empty for requests
// that matched no operation.
func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
