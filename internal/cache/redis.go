package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avax-reflights/refundservice/internal/domain"
)

// ErrMiss is returned when a key is not present in the cache
var ErrMiss = errors.New("cache miss")

// PolicyCache caches resolved refund policies in Redis so repeated
// eligibility checks for the same airline skip the remote fetch.
type PolicyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPolicyCache creates a policy cache on top of an existing Redis client
func NewPolicyCache(client *redis.Client, ttl time.Duration) *PolicyCache {
	return &PolicyCache{client: client, ttl: ttl}
}

// Connect creates a Redis client and verifies the connection
func Connect(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// policyKey returns the cache key for an airline's refund policy
func policyKey(airline string) string {
	return fmt.Sprintf("policy:%s", airline)
}

// GetPolicy retrieves a cached refund policy for an airline.
// Returns ErrMiss when the airline has no cached policy.
func (c *PolicyCache) GetPolicy(ctx context.Context, airline string) (*domain.RefundPolicy, error) {
	data, err := c.client.Get(ctx, policyKey(airline)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get policy for %s: %w", airline, err)
	}

	var policy domain.RefundPolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached policy for %s: %w", airline, err)
	}

	// Cached payloads went through validation on the way in, but a schema
	// change between deploys can leave stale shapes behind.
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("cached policy for %s is invalid: %w", airline, err)
	}

	return &policy, nil
}

// SetPolicy stores a refund policy for an airline with the configured TTL
func (c *PolicyCache) SetPolicy(ctx context.Context, policy *domain.RefundPolicy) error {
	data, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	return c.client.Set(ctx, policyKey(policy.Airline), data, c.ttl).Err()
}

// DeletePolicy removes a cached policy
func (c *PolicyCache) DeletePolicy(ctx context.Context, airline string) error {
	return c.client.Del(ctx, policyKey(airline)).Err()
}
