// internal/workers/communication/log-message/models.go
package logmessage

// Input is the job payload for message logging.
type Input struct {
	UserID        string                 `json:"userID"`
	Content       string                 `json:"content"`
	Direction     string                 `json:"direction"`
	CommandType   string                 `json:"commandType,omitempty"`
	SearchQuery   string                 `json:"searchQuery,omitempty"`
	SearchResults map[string]interface{} `json:"searchResults,omitempty"`
}

// Output reports the stored log entry.
type Output struct {
	LogID         string `json:"logID"`
	CorrelationID string `json:"correlationID"`
}
