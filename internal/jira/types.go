package jira

// Issue is the minimal issue identity needed to fetch history.
type Issue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// SearchResponse is the wire shape of a search result.
type SearchResponse struct {
	Issues []Issue `json:"issues"`
	Total  int     `json:"total"`
}

// User is the wire shape of an event author. Cloud instances populate
// displayName; older servers may only carry name or emailAddress.
type User struct {
	DisplayName  string `json:"displayName"`
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
}

// ChangelogItem is a single field change within a changelog entry.
type ChangelogItem struct {
	Field      string `json:"field"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
}

// ChangelogEntry is one history record: an author, a timestamp and the
// field changes made together.
type ChangelogEntry struct {
	Created string          `json:"created"`
	Author  User            `json:"author"`
	Items   []ChangelogItem `json:"items"`
}

// ChangelogPage is one paginated batch of changelog entries for an issue.
type ChangelogPage struct {
	Total  int              `json:"total"`
	Values []ChangelogEntry `json:"values"`
}

// Display resolves the author identity, falling back through the
// alternate identity fields.
func (u User) Display() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Name != "" {
		return u.Name
	}
	if u.EmailAddress != "" {
		return u.EmailAddress
	}
	return "Unknown"
}
