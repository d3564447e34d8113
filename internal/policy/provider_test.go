package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avax-reflights/refundservice/internal/cache"
	"github.com/avax-reflights/refundservice/internal/domain"
)

const remotePolicyBody = `{
	"airline": "SkyLink Airways",
	"rules": [
		{"timeframe": "24+ hours", "percentage": 95, "description": "Remote full refund"},
		{"timeframe": "0-24 hours", "percentage": 40, "description": "Remote partial refund"}
	]
}`

func TestProvider_RemoteFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remotePolicyBody))
	}))
	defer server.Close()

	provider := NewProvider(NewRemoteClient(server.URL, 5*time.Second, zap.NewNop()), nil, zap.NewNop())

	res, err := provider.Resolve(context.Background(), "SkyLink Airways")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != SourceRemote {
		t.Errorf("expected remote source, got %s", res.Source)
	}
	// Remote policy overrides the static table
	if res.Policy.Rules[0].Percentage != 95 {
		t.Errorf("expected remote rule percentage 95, got %d", res.Policy.Rules[0].Percentage)
	}
}

func TestProvider_FallsBackToStaticOnFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewProvider(NewRemoteClient(server.URL, 5*time.Second, zap.NewNop()), nil, zap.NewNop())

	res, err := provider.Resolve(context.Background(), "SkyLink Airways")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != SourceStatic {
		t.Errorf("expected static source, got %s", res.Source)
	}
	if res.FetchErr == nil {
		t.Error("expected fetch error to be surfaced for display")
	}
	if res.Policy.Rules[0].Percentage != 100 {
		t.Errorf("expected static rule percentage 100, got %d", res.Policy.Rules[0].Percentage)
	}
}

func TestProvider_FailedFetchSkipsRemoteForSession(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewProvider(NewRemoteClient(server.URL, 5*time.Second, zap.NewNop()), nil, zap.NewNop())
	ctx := context.Background()

	_, _ = provider.Resolve(ctx, "SkyLink Airways")
	_, _ = provider.Resolve(ctx, "SkyLink Airways")
	_, _ = provider.Resolve(ctx, "SkyLink Airways")

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 remote call for the session, got %d", got)
	}
}

func TestProvider_UnknownAirlineEverywhere(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	provider := NewProvider(NewRemoteClient(server.URL, 5*time.Second, zap.NewNop()), nil, zap.NewNop())

	_, err := provider.Resolve(context.Background(), "Ghost Air")
	if err == nil {
		t.Fatal("expected policy-not-found error")
	}
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND domain error, got %v", err)
	}
	de := domain.GetDomainError(err)
	if de.Message != "Airline policy not found" {
		t.Errorf("unexpected reason %q", de.Message)
	}
}

func TestProvider_NoRemoteUsesStatic(t *testing.T) {
	provider := NewProvider(nil, nil, zap.NewNop())

	res, err := provider.Resolve(context.Background(), "AeroChain")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Source != SourceStatic {
		t.Errorf("expected static source, got %s", res.Source)
	}
	if res.Policy.Airline != "AeroChain" {
		t.Errorf("unexpected airline %q", res.Policy.Airline)
	}
}

func TestProvider_EmptyAirline(t *testing.T) {
	provider := NewProvider(nil, nil, zap.NewNop())

	if _, err := provider.Resolve(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty airline")
	}
}

func TestProvider_CachesRemotePolicy(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(remotePolicyBody))
	}))
	defer server.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	policyCache := cache.NewPolicyCache(client, 15*time.Minute)

	provider := NewProvider(NewRemoteClient(server.URL, 5*time.Second, zap.NewNop()), policyCache, zap.NewNop())
	ctx := context.Background()

	first, err := provider.Resolve(ctx, "SkyLink Airways")
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	if first.Source != SourceRemote {
		t.Fatalf("expected remote source on first resolve, got %s", first.Source)
	}

	second, err := provider.Resolve(ctx, "SkyLink Airways")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if second.Source != SourceCache {
		t.Fatalf("expected cache source on second resolve, got %s", second.Source)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 remote call, got %d", got)
	}
}

func TestStaticPolicy_ReturnsCopy(t *testing.T) {
	first, ok := StaticPolicy("ChainFly")
	if !ok {
		t.Fatal("expected ChainFly in static table")
	}
	first.Rules[0].Percentage = 1

	second, _ := StaticPolicy("ChainFly")
	if second.Rules[0].Percentage == 1 {
		t.Error("mutating a returned policy must not affect the table")
	}
}

func TestStaticPolicies_AreValid(t *testing.T) {
	for _, airline := range StaticAirlines() {
		p, _ := StaticPolicy(airline)
		if err := p.Validate(); err != nil {
			t.Errorf("static policy for %s is invalid: %v", airline, err)
		}
		// Hand-authored tables decrease toward departure
		for i := 1; i < len(p.Rules); i++ {
			if p.Rules[i].Percentage > p.Rules[i-1].Percentage {
				t.Errorf("static policy for %s is not decreasing at rule %d", airline, i)
			}
		}
	}
}
