// internal/workers/conversation/classify-message/models.go
package classifymessage

type Input struct {
	MessageText string `json:"messageText"`
}

type Output struct {
	MessageType string `json:"messageType"`
	SearchTerm  string `json:"searchTerm,omitempty"`
	CommandType string `json:"commandType"`
}
