package circuitbreaker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPClient wraps an http.Client with circuit breaker protection
type HTTPClient struct {
	client  *http.Client
	breaker *CircuitBreaker
}

// NewHTTPClient creates a new HTTP client with circuit breaker protection
func NewHTTPClient(name string, client *http.Client, config Config, logger *zap.Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &HTTPClient{
		client:  client,
		breaker: New(name, config, logger),
	}
}

// Do executes an HTTP request with circuit breaker protection.
// Responses with status >= 400 count as failures and their body is folded
// into the returned error.
func (hc *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response

	err := hc.breaker.Execute(ctx, func() error {
		r, err := hc.client.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}

		if r.StatusCode >= 400 {
			body, readErr := io.ReadAll(io.LimitReader(r.Body, 4096))
			r.Body.Close()
			if readErr != nil {
				return fmt.Errorf("HTTP %d: failed to read response body: %w", r.StatusCode, readErr)
			}
			return fmt.Errorf("HTTP %d: %s", r.StatusCode, string(body))
		}

		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Get executes a GET request with circuit breaker protection
func (hc *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return hc.Do(ctx, req)
}

// State returns the current circuit breaker state
func (hc *HTTPClient) State() State {
	return hc.breaker.GetState()
}
