package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"movers/internal/aggregate"
	"movers/internal/cache"
	"movers/internal/errors"
	"movers/internal/jira"
)

// MoversResponse is the aggregation payload. Echoed criteria mirror the
// request: a constraint that was not supplied is absent, not empty. The
// ranked arrays are always present, empty when nothing matched.
type MoversResponse struct {
	Filter  string  `json:"filter"`
	From    *string `json:"from,omitempty"`
	To      *string `json:"to,omitempty"`
	NotFrom *string `json:"notFrom,omitempty"`
	NotTo   *string `json:"notTo,omitempty"`
	Since   *string `json:"since,omitempty"`
	Until   *string `json:"until,omitempty"`

	TotalIssues  int `json:"totalIssues"`
	FailedIssues int `json:"failedIssues,omitempty"`

	Users       []aggregate.UserCount       `json:"users"`
	Transitions []aggregate.TransitionCount `json:"transitions"`
}

// CountResponse is the current-count payload. Failures degrade to a
// zero-filled count with an embedded error string instead of a failed call.
type CountResponse struct {
	Filter string  `json:"filter"`
	Count  int     `json:"count"`
	Error  *string `json:"error,omitempty"`
}

// handleMovers serves GET /api/movers: resolve the query, check the result
// cache, and on a miss run search + aggregation before caching the outcome.
func (s *Server) handleMovers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params, err := ParseMoversParams(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	jql, err := jira.ResolveQuery(params.Filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	if s.client == nil {
		WriteError(w, errors.NewConfiguration("tracker connection is not configured"))
		return
	}

	mode := "users"
	if params.Discover {
		mode = "discover"
	}
	key := cache.Key(
		jql,
		params.From, params.To, params.NotFrom, params.NotTo,
		timeKey(params.Since), timeKey(params.Until),
		strconv.Itoa(params.Limit),
		strconv.Itoa(params.MaxIssues),
		strconv.Itoa(params.Concurrency),
		mode,
	)

	// The shared computation may serve coalesced waiters; one caller
	// disconnecting must not cancel it for the rest.
	runCtx := context.WithoutCancel(r.Context())

	ttl := time.Duration(params.TTLSeconds) * time.Second
	value, cached, err := s.results.Do(key, ttl, func() (interface{}, error) {
		return s.runAggregation(runCtx, jql, params)
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	if cached && s.logger != nil {
		s.logger.Debug("Movers served from cache", map[string]interface{}{
			"jql":       jql,
			"requestID": GetRequestID(r.Context()),
		})
	}

	WriteJSON(w, value, http.StatusOK)
}

// runAggregation performs the full pipeline for one cache miss.
func (s *Server) runAggregation(ctx context.Context, jql string, params *MoversParams) (*MoversResponse, error) {
	issues, err := s.client.SearchIssues(ctx, jql, params.MaxIssues)
	if err != nil {
		return nil, err
	}

	criteria := aggregate.Criteria{
		Field:   aggregate.StatusField,
		From:    params.From,
		NotFrom: params.NotFrom,
		To:      params.To,
		NotTo:   params.NotTo,
		Since:   params.Since,
		Until:   params.Until,
	}
	limit := aggregate.ClampLimit(params.Limit)

	var result *aggregate.Result
	if params.Discover {
		result, err = s.aggregator.DiscoverTransitions(ctx, issues, criteria, limit)
	} else {
		result, err = s.aggregator.MoversByUser(ctx, issues, criteria, limit)
	}
	if err != nil {
		return nil, err
	}

	resp := &MoversResponse{
		Filter:       params.Filter,
		From:         optString(params.From),
		To:           optString(params.To),
		NotFrom:      optString(params.NotFrom),
		NotTo:        optString(params.NotTo),
		Since:        optTime(params.Since),
		Until:        optTime(params.Until),
		TotalIssues:  result.TotalIssues,
		FailedIssues: result.FailedIssues,
		Users:        []aggregate.UserCount{},
		Transitions:  []aggregate.TransitionCount{},
	}
	if params.Discover {
		resp.Transitions = result.Transitions
	} else {
		resp.Users = result.Users
	}
	return resp, nil
}

// handleCount serves GET /api/count. Upstream and configuration failures
// degrade to a zero count with an embedded error string; only input
// validation fails the HTTP call.
func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := r.URL.Query().Get("filter")
	jql, err := jira.ResolveQuery(filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := CountResponse{Filter: filter}

	if s.client == nil {
		msg := "tracker connection is not configured"
		resp.Error = &msg
		WriteJSON(w, resp, http.StatusOK)
		return
	}

	count, err := s.client.CountIssues(r.Context(), jql)
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
		WriteJSON(w, resp, http.StatusOK)
		return
	}

	resp.Count = count
	WriteJSON(w, resp, http.StatusOK)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func timeKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
