// Package session owns durable chat transcripts and drives exchanges
// against a provider client.
package session

// Transcript roles. Anything else is an Unknown entry: kept on load for
// forward compatibility, skipped when building provider context.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one transcript record. Entries are immutable once appended;
// only whole-entry appends and prune's bulk rewrite touch the log.
type Entry struct {
	Role    string `yaml:"role"`
	Pattern string `yaml:"pattern,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// Query builds a user entry, optionally tagged with the pattern used.
func Query(content, pattern string) Entry {
	return Entry{Role: RoleUser, Pattern: pattern, Content: content}
}

// Reply builds an assistant entry.
func Reply(content string) Entry {
	return Entry{Role: RoleAssistant, Content: content}
}

// Known reports whether the entry carries a recognized role. The loader
// accepts the aliases the original file format used for each role.
func (e Entry) Known() bool {
	switch e.Role {
	case RoleUser, "query", RoleAssistant, "reply":
		return true
	}
	return false
}

// IsQuery reports whether the entry is a user query.
func (e Entry) IsQuery() bool {
	return e.Role == RoleUser || e.Role == "query"
}

// IsReply reports whether the entry is an assistant reply.
func (e Entry) IsReply() bool {
	return e.Role == RoleAssistant || e.Role == "reply"
}
