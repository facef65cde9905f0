package aggregate

import (
	"context"
	"sort"
	"sync"

	"movers/internal/config"
	"movers/internal/errors"
	"movers/internal/jira"
	"movers/internal/logging"
)

const (
	// DefaultLimit is the number of ranked entries returned when the caller
	// does not ask for a specific limit
	DefaultLimit = 20
	// MaxLimit is the hard ceiling on ranked entries
	MaxLimit = 100

	minConcurrency = 1
	maxConcurrency = 10
)

// HistoryFetcher retrieves one changelog page for an issue.
type HistoryFetcher interface {
	FetchChangelogPage(ctx context.Context, issueID string, startAt, pageSize int) (*jira.ChangelogPage, error)
}

// UserCount is one ranked per-user entry.
type UserCount struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// TransitionCount is one ranked transition pair observed in discovery mode.
type TransitionCount struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// Result is the outcome of one aggregation run.
type Result struct {
	TotalIssues  int
	FailedIssues int
	Users        []UserCount
	Transitions  []TransitionCount
}

// Aggregator drives changelog retrieval and tallying for an issue set.
type Aggregator struct {
	fetcher     HistoryFetcher
	logger      *logging.Logger
	concurrency int
	pageSize    int
}

// New creates an aggregator. The concurrency bound comes from server
// configuration, never from the client request, and is clamped to [1,10].
func New(fetcher HistoryFetcher, cfg config.AggregationConfig, logger *logging.Logger) *Aggregator {
	concurrency := cfg.Concurrency
	if concurrency < minConcurrency {
		concurrency = minConcurrency
	}
	if concurrency > maxConcurrency {
		concurrency = maxConcurrency
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: concurrency,
		pageSize:    pageSize,
	}
}

// MoversByUser tallies matching transitions per actor across the issue set.
func (a *Aggregator) MoversByUser(ctx context.Context, issues []jira.Issue, criteria Criteria, limit int) (*Result, error) {
	tally := make(map[string]int)
	var mu sync.Mutex

	failed, err := a.collect(ctx, issues, func(ev ChangeEvent) {
		if !criteria.Matches(ev) {
			return
		}
		mu.Lock()
		tally[ev.Actor]++
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	users := make([]UserCount, 0, len(tally))
	for user, count := range tally {
		users = append(users, UserCount{User: user, Count: count})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Count != users[j].Count {
			return users[i].Count > users[j].Count
		}
		return users[i].User < users[j].User
	})

	return &Result{
		TotalIssues:  len(issues),
		FailedIssues: failed,
		Users:        truncateUsers(users, limit),
	}, nil
}

// DiscoverTransitions tallies every observed transition pair, ignoring the
// from/to constraints but honoring the field and time window. Used to
// enumerate which transitions exist before choosing filter values.
func (a *Aggregator) DiscoverTransitions(ctx context.Context, issues []jira.Issue, criteria Criteria, limit int) (*Result, error) {
	window := criteria.windowOnly()

	type pair struct{ from, to string }
	tally := make(map[pair]int)
	var mu sync.Mutex

	failed, err := a.collect(ctx, issues, func(ev ChangeEvent) {
		if !window.Matches(ev) {
			return
		}
		mu.Lock()
		tally[pair{ev.From, ev.To}]++
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	transitions := make([]TransitionCount, 0, len(tally))
	for p, count := range tally {
		transitions = append(transitions, TransitionCount{From: p.from, To: p.to, Count: count})
	}
	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].Count != transitions[j].Count {
			return transitions[i].Count > transitions[j].Count
		}
		if transitions[i].From != transitions[j].From {
			return transitions[i].From < transitions[j].From
		}
		return transitions[i].To < transitions[j].To
	})

	return &Result{
		TotalIssues:  len(issues),
		FailedIssues: failed,
		Transitions:  truncateTransitions(transitions, limit),
	}, nil
}

// collect fans out per-issue pagination under the concurrency bound and
// feeds every extracted event to visit. The bound applies to issues being
// paginated simultaneously, not to individual page fetches; as soon as one
// issue finishes the next queued issue begins. visit is called under the
// caller's lock discipline — callers synchronize their own tallies.
//
// A failing issue is skipped and counted rather than aborting the run; the
// run fails outright only if every issue failed.
func (a *Aggregator) collect(ctx context.Context, issues []jira.Issue, visit func(ChangeEvent)) (int, error) {
	if len(issues) == 0 {
		return 0, nil
	}

	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	var mu sync.Mutex
	failed := 0
	var firstErr error

	for _, issue := range issues {
		issue := issue
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := a.collectIssue(ctx, issue, visit); err != nil {
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()

				if a.logger != nil {
					a.logger.Warn("Issue history fetch failed", map[string]interface{}{
						"issue": issue.Key,
						"error": err.Error(),
					})
				}
			}
		}()
	}
	wg.Wait()

	if failed == len(issues) {
		return failed, errors.NewUpstream(firstErr, "history retrieval failed for all %d issues", failed)
	}
	return failed, nil
}

// collectIssue pages through one issue's full history, oldest first.
// Pagination stops at the reported total, or early on an empty page —
// a stale or inconsistent total must not loop forever.
func (a *Aggregator) collectIssue(ctx context.Context, issue jira.Issue, visit func(ChangeEvent)) error {
	startAt := 0
	for {
		page, err := a.fetcher.FetchChangelogPage(ctx, issue.ID, startAt, a.pageSize)
		if err != nil {
			return err
		}
		if len(page.Values) == 0 {
			return nil
		}

		for _, entry := range page.Values {
			actor := entry.Author.Display()
			for _, item := range entry.Items {
				visit(ChangeEvent{
					Actor:   actor,
					Created: entry.Created,
					Field:   item.Field,
					From:    item.FromString,
					To:      item.ToString,
				})
			}
		}

		startAt += len(page.Values)
		if startAt >= page.Total {
			return nil
		}
	}
}

// ClampLimit normalizes a requested entry limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func truncateUsers(entries []UserCount, limit int) []UserCount {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func truncateTransitions(entries []TransitionCount, limit int) []TransitionCount {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
