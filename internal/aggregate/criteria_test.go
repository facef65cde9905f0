package aggregate

import (
	"testing"
	"time"
)

func statusEvent(from, to, created string) ChangeEvent {
	return ChangeEvent{Actor: "alice", Created: created, Field: "status", From: from, To: to}
}

func TestMatchesValueConstraints(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		event    ChangeEvent
		want     bool
	}{
		{
			"unconstrained matches any status change",
			NewCriteria(),
			statusEvent("Open", "Done", ""),
			true,
		},
		{
			"wrong field never matches",
			NewCriteria(),
			ChangeEvent{Field: "assignee", From: "alice", To: "bob"},
			false,
		},
		{
			"from matches case-insensitively",
			Criteria{Field: StatusField, From: "in qa"},
			statusEvent("In QA", "Done", ""),
			true,
		},
		{
			"from mismatch",
			Criteria{Field: StatusField, From: "Open"},
			statusEvent("In QA", "Done", ""),
			false,
		},
		{
			"to matches case-insensitively",
			Criteria{Field: StatusField, To: "DONE"},
			statusEvent("In QA", "Done", ""),
			true,
		},
		{
			"notFrom excludes",
			Criteria{Field: StatusField, NotFrom: "in qa"},
			statusEvent("In QA", "Done", ""),
			false,
		},
		{
			"notTo excludes",
			Criteria{Field: StatusField, NotTo: "done"},
			statusEvent("In QA", "Done", ""),
			false,
		},
		{
			"notFrom passes different value",
			Criteria{Field: StatusField, NotFrom: "Open"},
			statusEvent("In QA", "Done", ""),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.Matches(tt.event); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesTimeWindow(t *testing.T) {
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name    string
		since   *time.Time
		until   *time.Time
		created string
		want    bool
	}{
		{"inside window", &since, &until, "2024-03-15T12:00:00.000+0000", true},
		{"exactly at since boundary", &since, &until, "2024-03-01T00:00:00.000+0000", true},
		{"exactly at until boundary", &since, &until, "2024-03-31T23:59:59.000+0000", true},
		{"before since", &since, &until, "2024-02-28T12:00:00.000+0000", false},
		{"after until", &since, &until, "2024-04-01T00:00:00.000+0000", false},
		{"open lower bound", nil, &until, "2020-01-01T00:00:00.000+0000", true},
		{"open upper bound", &since, nil, "2030-01-01T00:00:00.000+0000", true},
		{"rfc3339 timestamp accepted", &since, &until, "2024-03-15T12:00:00+00:00", true},
		{"unparseable rejected when window set", &since, &until, "not a time", false},
		{"unparseable accepted with no window", nil, nil, "not a time", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Criteria{Field: StatusField, Since: tt.since, Until: tt.until}
			ev := statusEvent("In QA", "Done", tt.created)
			if got := c.Matches(ev); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEventTime(t *testing.T) {
	if _, ok := ParseEventTime("2024-03-01T10:30:00.000+0200"); !ok {
		t.Error("Expected Jira layout to parse")
	}
	if _, ok := ParseEventTime("2024-03-01T10:30:00Z"); !ok {
		t.Error("Expected RFC3339 to parse")
	}
	if _, ok := ParseEventTime("01/03/2024"); ok {
		t.Error("Expected unknown layout to fail")
	}
}
