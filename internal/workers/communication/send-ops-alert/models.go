package sendopsalert

import (
	"context"
	"time"

	"carfind-workers/internal/common/logger"
)

type Input struct {
	AlertType string                 `json:"alertType"`
	Severity  string                 `json:"severity"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	AlertID string    `json:"alertID"`
	Status  string    `json:"status"`
	SentAt  time.Time `json:"sentAt"`
}

// EmailSender delivers the alert email leg.
type EmailSender interface {
	SendAlertEmail(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// SMSSender delivers the critical-severity SMS leg.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message, senderID string) (string, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	Email  EmailSender
	SMS    SMSSender
}
