package models

// Message direction values stored in message_logs.
const (
	MessageIncoming = "incoming"
	MessageOutgoing = "outgoing"
)

// Command types recorded alongside logged messages.
const (
	CommandGreeting = "greeting"
	CommandSearch   = "search"
	CommandNext     = "next"
	CommandHelp     = "help"
	CommandUnknown  = "unknown"
)

// MessageLog is a row of the message_logs collection.
type MessageLog struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user"`
	Content       string                 `json:"content"`
	MessageType   string                 `json:"message_type"`
	CommandType   string                 `json:"command_type,omitempty"`
	SearchQuery   string                 `json:"search_query,omitempty"`
	SearchResults map[string]interface{} `json:"search_results,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Timestamp     string                 `json:"timestamp"`
}
