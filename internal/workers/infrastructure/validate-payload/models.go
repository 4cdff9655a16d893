// internal/workers/infrastructure/validate-payload/models.go
package validatepayload

// Input carries the raw webhook document as delivered by the Cloud API.
type Input struct {
	Payload map[string]interface{} `json:"payload"`
}

// Output is the flattened message envelope the rest of the process runs on.
type Output struct {
	WaID        string `json:"waID"`
	ProfileName string `json:"profileName"`
	MessageID   string `json:"messageID"`
	MessageText string `json:"messageText"`
	Timestamp   string `json:"timestamp"`
}
