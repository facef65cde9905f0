// Package aggregate implements the transition-aggregation pipeline: it fans
// changelog retrieval out across an issue set under a concurrency bound,
// filters status transitions against request criteria, and tallies matches
// per user or per transition pair.
package aggregate

import (
	"strings"
	"time"
)

// StatusField is the changelog field this system aggregates over.
const StatusField = "status"

// ChangeEvent is a single field transition extracted from a changelog entry.
type ChangeEvent struct {
	Actor   string
	Created string
	Field   string
	From    string
	To      string
}

// Criteria describes which transitions count. All value comparisons are
// case-insensitive exact matches; an absent constraint means unconstrained.
// Since/Until bound the event timestamp inclusively.
type Criteria struct {
	Field   string
	From    string
	NotFrom string
	To      string
	NotTo   string
	Since   *time.Time
	Until   *time.Time
}

// NewCriteria returns criteria targeting the status field.
func NewCriteria() Criteria {
	return Criteria{Field: StatusField}
}

// windowOnly strips the value constraints, keeping field and time window.
// Discovery mode uses this to enumerate every observed transition pair.
func (c Criteria) windowOnly() Criteria {
	return Criteria{Field: c.Field, Since: c.Since, Until: c.Until}
}

// Matches reports whether ev satisfies the criteria.
func (c Criteria) Matches(ev ChangeEvent) bool {
	if !strings.EqualFold(ev.Field, c.Field) {
		return false
	}
	if c.From != "" && !strings.EqualFold(ev.From, c.From) {
		return false
	}
	if c.NotFrom != "" && strings.EqualFold(ev.From, c.NotFrom) {
		return false
	}
	if c.To != "" && !strings.EqualFold(ev.To, c.To) {
		return false
	}
	if c.NotTo != "" && strings.EqualFold(ev.To, c.NotTo) {
		return false
	}
	return c.inWindow(ev.Created)
}

// inWindow checks the time bounds. With no bounds set the timestamp is not
// parsed at all; with a bound set, an unparseable timestamp never matches.
func (c Criteria) inWindow(created string) bool {
	if c.Since == nil && c.Until == nil {
		return true
	}

	t, ok := ParseEventTime(created)
	if !ok {
		return false
	}
	if c.Since != nil && t.Before(*c.Since) {
		return false
	}
	if c.Until != nil && t.After(*c.Until) {
		return false
	}
	return true
}

// eventTimeLayouts are tried in order: the Jira changelog format first,
// then RFC3339 for servers that emit a zone colon.
var eventTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
}

// ParseEventTime parses a changelog timestamp.
func ParseEventTime(s string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
