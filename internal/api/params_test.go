package api

import (
	"net/http/httptest"
	"testing"
	"time"
)

func parseQuery(t *testing.T, query string) (*MoversParams, error) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/movers?"+query, nil)
	return ParseMoversParams(req)
}

func TestParseDefaults(t *testing.T) {
	params, err := parseQuery(t, "filter=100")
	if err != nil {
		t.Fatal(err)
	}

	if params.Limit != 20 {
		t.Errorf("Expected default limit 20, got %d", params.Limit)
	}
	if params.MaxIssues != 150 {
		t.Errorf("Expected default maxIssues 150, got %d", params.MaxIssues)
	}
	if params.TTLSeconds != 60 {
		t.Errorf("Expected default ttl 60, got %d", params.TTLSeconds)
	}
	if params.Concurrency != 0 {
		t.Errorf("Expected default concurrency 0, got %d", params.Concurrency)
	}
	if params.Discover {
		t.Error("Discover should default to false")
	}
	if params.Since != nil || params.Until != nil {
		t.Error("Time bounds should default to nil")
	}
}

func TestParseClamps(t *testing.T) {
	params, err := parseQuery(t, "filter=100&limit=500&maxIssues=9999&concurrency=64&ttl=100000")
	if err != nil {
		t.Fatal(err)
	}

	if params.Limit != 100 {
		t.Errorf("Expected limit clamped to 100, got %d", params.Limit)
	}
	if params.MaxIssues != 1000 {
		t.Errorf("Expected maxIssues clamped to 1000, got %d", params.MaxIssues)
	}
	if params.Concurrency != 20 {
		t.Errorf("Expected concurrency clamped to 20, got %d", params.Concurrency)
	}
	if params.TTLSeconds != 600 {
		t.Errorf("Expected ttl clamped to 600, got %d", params.TTLSeconds)
	}
}

func TestParseInvalidInt(t *testing.T) {
	if _, err := parseQuery(t, "filter=100&limit=abc"); err == nil {
		t.Error("Expected error for non-numeric limit")
	}
	if _, err := parseQuery(t, "filter=100&ttl=1.5"); err == nil {
		t.Error("Expected error for fractional ttl")
	}
}

func TestParseTimeBounds(t *testing.T) {
	params, err := parseQuery(t, "filter=100&since=2024-03-01&until=2024-03-31T23:59:59Z")
	if err != nil {
		t.Fatal(err)
	}

	wantSince := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if params.Since == nil || !params.Since.Equal(wantSince) {
		t.Errorf("Unexpected since: %v", params.Since)
	}
	if params.Until == nil || params.Until.Hour() != 23 {
		t.Errorf("Unexpected until: %v", params.Until)
	}
}

func TestParseInvalidTime(t *testing.T) {
	if _, err := parseQuery(t, "filter=100&since=March+1st"); err == nil {
		t.Error("Expected error for unparseable since")
	}
}

func TestParseDiscoverFlag(t *testing.T) {
	params, err := parseQuery(t, "filter=100&discover=1")
	if err != nil {
		t.Fatal(err)
	}
	if !params.Discover {
		t.Error("discover=1 should enable discovery mode")
	}

	params, err = parseQuery(t, "filter=100&discover=true")
	if err != nil {
		t.Fatal(err)
	}
	if params.Discover {
		t.Error("Only the literal \"1\" enables discovery mode")
	}
}
