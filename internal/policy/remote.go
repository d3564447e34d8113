package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/circuitbreaker"
	"github.com/avax-reflights/refundservice/internal/domain"
	"github.com/avax-reflights/refundservice/internal/metrics"
)

// RemoteClient fetches airline refund policies from the upstream policy
// service. Fetches go through a circuit breaker; there is no retry — a failed
// fetch falls back to the static table for the rest of the session.
type RemoteClient struct {
	baseURL string
	http    *circuitbreaker.HTTPClient
	logger  *zap.Logger
}

// NewRemoteClient creates a policy service client
func NewRemoteClient(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteClient {
	httpClient := &http.Client{Timeout: timeout}

	return &RemoteClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    circuitbreaker.NewHTTPClient("policy-service", httpClient, circuitbreaker.DefaultConfig(), logger),
		logger:  logger,
	}
}

// FetchPolicy fetches the refund policy for an airline. The response body is
// validated against the RefundPolicy schema before it is returned; malformed
// payloads are rejected rather than propagated.
func (c *RemoteClient) FetchPolicy(ctx context.Context, airline string) (*domain.RefundPolicy, error) {
	endpoint := fmt.Sprintf("%s/airlines/%s/refund-policy", c.baseURL, url.PathEscape(airline))

	start := time.Now()
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		metrics.ObservePolicyFetch("error", time.Since(start))
		return nil, domain.NewPolicyFetchError(airline, err)
	}
	defer resp.Body.Close()

	var policy domain.RefundPolicy
	if err := json.NewDecoder(resp.Body).Decode(&policy); err != nil {
		metrics.ObservePolicyFetch("decode_error", time.Since(start))
		return nil, domain.NewPolicyFetchError(airline, fmt.Errorf("invalid response body: %w", err))
	}

	if err := policy.Validate(); err != nil {
		metrics.ObservePolicyFetch("invalid", time.Since(start))
		c.logger.Warn("Rejecting malformed policy from remote service",
			zap.String("airline", airline),
			zap.Error(err))
		return nil, domain.NewPolicyFetchError(airline, err)
	}

	metrics.ObservePolicyFetch("ok", time.Since(start))

	return &policy, nil
}

// State returns the circuit breaker state of the underlying HTTP client
func (c *RemoteClient) State() circuitbreaker.State {
	return c.http.State()
}
