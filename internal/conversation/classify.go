// Package conversation holds the chat-side logic of the bot: command
// classification, canned response templates, and search-result
// formatting. It is transport-agnostic; workers glue it to the store and
// the messaging channel.
package conversation

import (
	"strings"

	"carfind-workers/internal/models"
)

// Intent is the routing decision for an inbound message.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentSearch       Intent = "car_search"
	IntentNoSearchTerm Intent = "no_search_term"
	IntentNextPage     Intent = "next_page"
	IntentHelp         Intent = "help"
	IntentUnknown      Intent = "unknown"
)

// greetings are matched against the whole normalized message, not as
// prefixes, so "hi there" stays unknown.
var greetings = map[string]struct{}{
	"hi":    {},
	"hello": {},
	"hey":   {},
	"start": {},
}

// Classification is the single classifier output shared by response
// generation and message logging.
type Classification struct {
	Intent     Intent `json:"intent"`
	SearchTerm string `json:"searchTerm,omitempty"`
}

// Classify normalizes the message (lower-case, trimmed) and picks an
// intent. "find <term>" carries the trimmed remainder as the search term;
// a bare "find" yields IntentNoSearchTerm so the user gets usage help
// instead of a shrug.
func Classify(message string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(message))

	if _, ok := greetings[normalized]; ok {
		return Classification{Intent: IntentGreeting}
	}

	if normalized == "find" {
		return Classification{Intent: IntentNoSearchTerm}
	}
	if strings.HasPrefix(normalized, "find ") {
		term := strings.TrimSpace(normalized[len("find "):])
		if term == "" {
			return Classification{Intent: IntentNoSearchTerm}
		}
		return Classification{Intent: IntentSearch, SearchTerm: term}
	}

	if normalized == "next" {
		return Classification{Intent: IntentNextPage}
	}
	if normalized == "help" {
		return Classification{Intent: IntentHelp}
	}

	return Classification{Intent: IntentUnknown}
}

// CommandType maps the intent onto the coarser vocabulary recorded in
// message_logs. Both search variants log as a search command.
func (c Classification) CommandType() string {
	switch c.Intent {
	case IntentGreeting:
		return models.CommandGreeting
	case IntentSearch, IntentNoSearchTerm:
		return models.CommandSearch
	case IntentNextPage:
		return models.CommandNext
	case IntentHelp:
		return models.CommandHelp
	default:
		return models.CommandUnknown
	}
}

// IsSearch reports whether the message should bump the user's search
// counters and overwrite the stored query.
func (c Classification) IsSearch() bool {
	return c.Intent == IntentSearch
}
