package sendwhatsappmessage

import (
	"context"
	"time"

	"carfind-workers/internal/common/errors"
	"carfind-workers/internal/common/logger"
	"carfind-workers/internal/common/metrics"
	"carfind-workers/internal/common/whatsapp"
)

type Service struct {
	config  *Config
	logger  logger.Logger
	channel MessageChannel
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:  config,
		logger:  deps.Logger,
		channel: deps.Channel,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Sending WhatsApp message", map[string]interface{}{
		"to":     input.To,
		"length": len(input.Body),
	})

	body := whatsapp.NormalizeBody(input.Body)
	if body == "" {
		metrics.MessagesSent.WithLabelValues("skipped").Inc()
		return nil, &errors.StandardError{
			Code:      "VALIDATION_FAILED",
			Message:   "Message body is empty after normalization",
			Retryable: false,
			Timestamp: time.Now(),
		}
	}

	messageID, err := s.channel.SendText(ctx, input.To, body)
	if err != nil {
		metrics.MessagesSent.WithLabelValues("failed").Inc()
		return nil, errors.NewMessageSendFailedError(err)
	}

	metrics.MessagesSent.WithLabelValues("sent").Inc()

	s.logger.Info("Message delivered", map[string]interface{}{
		"to":        input.To,
		"messageId": messageID,
	})

	return &Output{
		Delivered: true,
		MessageID: messageID,
		SentAt:    time.Now().UTC(),
	}, nil
}
