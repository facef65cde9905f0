package api

import (
	"net/http"
	"strconv"
	"time"

	"movers/internal/errors"
	"movers/internal/jira"
)

// Request parameter defaults and ceilings.
const (
	DefaultMaxIssues = jira.DefaultMaxIssues
	MaxIssuesCeiling = jira.MaxIssuesCeiling
	DefaultTTL       = 60
	MaxTTL           = 600
	MaxConcurrency   = 20
)

// MoversParams holds the validated query parameters of a movers request.
type MoversParams struct {
	Filter  string
	From    string
	To      string
	NotFrom string
	NotTo   string
	Since   *time.Time
	Until   *time.Time

	Limit     int
	MaxIssues int
	// Concurrency is accepted and cache-keyed but never honored by the
	// aggregator; the server-side bound is authoritative.
	Concurrency int
	TTLSeconds  int
	Discover    bool
}

// ParseMoversParams extracts and validates query parameters. filter is the
// only required parameter; everything else has a default or is optional.
func ParseMoversParams(r *http.Request) (*MoversParams, error) {
	query := r.URL.Query()

	params := &MoversParams{
		Filter:   query.Get("filter"),
		From:     query.Get("from"),
		To:       query.Get("to"),
		NotFrom:  query.Get("notFrom"),
		NotTo:    query.Get("notTo"),
		Discover: query.Get("discover") == "1",
	}

	var err error
	if params.Since, err = parseTimeParam(query.Get("since"), "since"); err != nil {
		return nil, err
	}
	if params.Until, err = parseTimeParam(query.Get("until"), "until"); err != nil {
		return nil, err
	}

	if params.Limit, err = parseIntParam(query.Get("limit"), "limit", 20, 100); err != nil {
		return nil, err
	}
	if params.MaxIssues, err = parseIntParam(query.Get("maxIssues"), "maxIssues", DefaultMaxIssues, MaxIssuesCeiling); err != nil {
		return nil, err
	}
	if params.Concurrency, err = parseIntParam(query.Get("concurrency"), "concurrency", 0, MaxConcurrency); err != nil {
		return nil, err
	}
	if params.TTLSeconds, err = parseIntParam(query.Get("ttl"), "ttl", DefaultTTL, MaxTTL); err != nil {
		return nil, err
	}

	return params, nil
}

// parseIntParam parses an optional integer parameter, clamping to [0, max].
func parseIntParam(val, name string, defaultVal, max int) (int, error) {
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.NewValidation("invalid %s parameter: %q", name, val)
	}
	if i < 0 {
		i = 0
	}
	if i > max {
		i = max
	}
	return i, nil
}

// timeParamLayouts accepts full timestamps and bare dates.
var timeParamLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimeParam(val, name string) (*time.Time, error) {
	if val == "" {
		return nil, nil
	}
	for _, layout := range timeParamLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return &t, nil
		}
	}
	return nil, errors.NewValidation("invalid %s parameter: %q is not an ISO datetime", name, val)
}
