package jira

import (
	"net/url"
	"strings"

	"movers/internal/errors"
)

// ResolveQuery normalizes user input into a canonical JQL string.
//
//   - a numeric filter id becomes `filter=<id>`
//   - a URL carrying `?filter=<id>` resolves to the same
//   - a URL carrying `?jql=<expr>` resolves to the expression verbatim
//   - any other non-empty string passes through unchanged
//
// Blank input is rejected before any remote call is made.
func ResolveQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", errors.NewValidation("filter parameter is required")
	}

	if isDigits(q) {
		return "filter=" + q, nil
	}

	if strings.HasPrefix(q, "http://") || strings.HasPrefix(q, "https://") {
		if u, err := url.Parse(q); err == nil {
			params := u.Query()
			if id := params.Get("filter"); id != "" {
				return "filter=" + id, nil
			}
			if jql := params.Get("jql"); jql != "" {
				return jql, nil
			}
		}
	}

	return q, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
