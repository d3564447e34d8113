package policy

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/cache"
	"github.com/avax-reflights/refundservice/internal/domain"
	"github.com/avax-reflights/refundservice/internal/metrics"
)

// Source identifies where a resolved policy came from
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
	SourceStatic Source = "static"
)

// Resolution is the outcome of a policy lookup. FetchErr carries a remote
// fetch failure for display purposes; it is set even when the lookup
// succeeded through the static fallback.
type Resolution struct {
	Policy   *domain.RefundPolicy
	Source   Source
	FetchErr error
}

// Provider resolves airline refund policies remote-first with a static
// fallback. A Redis cache sits in front of the remote service when
// configured; both the cache and the remote client are optional.
type Provider struct {
	remote *RemoteClient
	cache  *cache.PolicyCache
	logger *zap.Logger

	// A failed remote fetch permanently falls back to the static table for
	// the rest of the session, per airline.
	mu          sync.Mutex
	fetchFailed map[string]bool
}

// NewProvider creates a policy provider. remote and policyCache may be nil.
func NewProvider(remote *RemoteClient, policyCache *cache.PolicyCache, logger *zap.Logger) *Provider {
	return &Provider{
		remote:      remote,
		cache:       policyCache,
		logger:      logger,
		fetchFailed: make(map[string]bool),
	}
}

// Resolve looks up the refund policy for an airline: cache, then remote,
// then the static table. It returns a policy-not-found error only when all
// three come up empty.
func (p *Provider) Resolve(ctx context.Context, airline string) (Resolution, error) {
	if airline == "" {
		return Resolution{}, domain.NewInvalidInputError("airline is required", "")
	}

	if p.cache != nil {
		cached, err := p.cache.GetPolicy(ctx, airline)
		if err == nil {
			metrics.PolicyCacheHit.Inc()
			return Resolution{Policy: cached, Source: SourceCache}, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			p.logger.Warn("Policy cache lookup failed",
				zap.String("airline", airline),
				zap.Error(err))
		}
		metrics.PolicyCacheMiss.Inc()
	}

	var fetchErr error
	if p.remote != nil && !p.skipRemote(airline) {
		policy, err := p.remote.FetchPolicy(ctx, airline)
		if err == nil {
			if p.cache != nil {
				if cacheErr := p.cache.SetPolicy(ctx, policy); cacheErr != nil {
					p.logger.Warn("Failed to cache policy",
						zap.String("airline", airline),
						zap.Error(cacheErr))
				}
			}
			return Resolution{Policy: policy, Source: SourceRemote}, nil
		}

		fetchErr = err
		p.markFetchFailed(airline)
		p.logger.Warn("Remote policy fetch failed, falling back to static table",
			zap.String("airline", airline),
			zap.Error(err))
	}

	if static, ok := StaticPolicy(airline); ok {
		metrics.PolicyFetchTotal.WithLabelValues(string(SourceStatic), "ok").Inc()
		return Resolution{Policy: static, Source: SourceStatic, FetchErr: fetchErr}, nil
	}

	metrics.PolicyFetchTotal.WithLabelValues(string(SourceStatic), "not_found").Inc()
	return Resolution{FetchErr: fetchErr}, domain.NewPolicyNotFoundError(airline)
}

// skipRemote reports whether the remote fetch already failed for this
// airline in the current session
func (p *Provider) skipRemote(airline string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchFailed[airline]
}

func (p *Provider) markFetchFailed(airline string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchFailed[airline] = true
}
