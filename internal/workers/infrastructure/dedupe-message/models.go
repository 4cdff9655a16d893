// internal/workers/infrastructure/dedupe-message/models.go
package dedupemessage

// Input identifies one inbound message by its provider id.
type Input struct {
	MessageID string `json:"messageID"`
}

// Output reports whether the message was already seen.
type Output struct {
	Duplicate bool `json:"duplicate"`
}
