package sendwhatsappmessage

import (
	"context"
	"time"

	"carfind-workers/internal/common/logger"
)

type Input struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type Output struct {
	Delivered bool      `json:"delivered"`
	MessageID string    `json:"messageID,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// MessageChannel is the outbound WhatsApp surface this worker needs.
type MessageChannel interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

type ServiceDependencies struct {
	Logger  logger.Logger
	Channel MessageChannel
}
