package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRemoteClient_FetchPolicy(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"airline": "SkyLink Airways",
			"rules": [
				{"timeframe": "24+ hours", "percentage": 100, "description": "Full refund available"},
				{"timeframe": "0-24 hours", "percentage": 50, "description": "Partial refund available"}
			]
		}`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, 5*time.Second, zap.NewNop())

	policy, err := client.FetchPolicy(context.Background(), "SkyLink Airways")
	if err != nil {
		t.Fatalf("FetchPolicy failed: %v", err)
	}

	if gotPath != "/airlines/"+url.PathEscape("SkyLink Airways")+"/refund-policy" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if policy.Airline != "SkyLink Airways" {
		t.Errorf("unexpected airline %q", policy.Airline)
	}
	if len(policy.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(policy.Rules))
	}
	if policy.Rules[0].Percentage != 100 {
		t.Errorf("expected first rule percentage 100, got %d", policy.Rules[0].Percentage)
	}
}

func TestRemoteClient_AirlineNameIsEscaped(t *testing.T) {
	var gotRaw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRaw = r.URL.EscapedPath()
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, 5*time.Second, zap.NewNop())
	_, _ = client.FetchPolicy(context.Background(), "Air France/KLM")

	want := "/airlines/" + url.PathEscape("Air France/KLM") + "/refund-policy"
	if gotRaw != want {
		t.Errorf("expected escaped path %q, got %q", want, gotRaw)
	}
}

func TestRemoteClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such airline", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, 5*time.Second, zap.NewNop())

	if _, err := client.FetchPolicy(context.Background(), "Unknown Air"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestRemoteClient_RejectsMalformedPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"airline": "Bad Air", "rules": [{"timeframe": "whenever", "percentage": 50}]}`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, 5*time.Second, zap.NewNop())

	if _, err := client.FetchPolicy(context.Background(), "Bad Air"); err == nil {
		t.Fatal("expected error for malformed rule timeframe")
	}
}

func TestRemoteClient_RejectsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, 5*time.Second, zap.NewNop())

	if _, err := client.FetchPolicy(context.Background(), "SkyLink Airways"); err == nil {
		t.Fatal("expected error for invalid JSON body")
	}
}
