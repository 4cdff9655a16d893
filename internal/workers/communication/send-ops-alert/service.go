package sendopsalert

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"carfind-workers/internal/common/errors"
	"carfind-workers/internal/common/logger"
	"carfind-workers/internal/common/metrics"
	"carfind-workers/internal/models"
)

// alertTemplates keys known alert types to their subject and lead-in.
// Unknown types fall back to a generic rendering.
var alertTemplates = map[string]struct {
	Subject string
	Intro   string
}{
	"worker_failure": {
		Subject: "[carfind] worker failure in %s",
		Intro:   "A worker is failing its jobs.",
	},
	"store_unavailable": {
		Subject: "[carfind] record store unreachable from %s",
		Intro:   "The record store is not responding.",
	},
	"channel_degraded": {
		Subject: "[carfind] WhatsApp delivery degraded in %s",
		Intro:   "Outbound messages are failing.",
	},
	"queue_backlog": {
		Subject: "[carfind] job backlog building in %s",
		Intro:   "Jobs are accumulating faster than they drain.",
	},
}

const (
	StatusSent    = "sent"
	StatusPartial = "partial"
)

type Service struct {
	config *Config
	logger logger.Logger
	email  EmailSender
	sms    SMSSender
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		email:  deps.Email,
		sms:    deps.SMS,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Dispatching ops alert", map[string]interface{}{
		"alertType": input.AlertType,
		"severity":  input.Severity,
		"component": input.Component,
	})

	subject, body := renderAlert(input)

	alertID, err := s.email.SendAlertEmail(ctx, s.config.FromEmail, s.config.EmailTo, subject, body)
	if err != nil {
		return nil, errors.NewAlertSendFailedError("email", err)
	}

	status := StatusSent
	if input.Severity == models.AlertSeverityCritical {
		if failed := s.sendSMSLeg(ctx, subject, input); failed {
			status = StatusPartial
		}
	}

	metrics.AlertsSent.WithLabelValues(input.Severity).Inc()

	s.logger.Info("Ops alert dispatched", map[string]interface{}{
		"alertId":  alertID,
		"status":   status,
		"severity": input.Severity,
	})

	return &Output{
		AlertID: alertID,
		Status:  status,
		SentAt:  time.Now().UTC(),
	}, nil
}

// sendSMSLeg pages the ops phones. The email already went out, so SMS
// problems degrade the alert instead of failing the job.
func (s *Service) sendSMSLeg(ctx context.Context, subject string, input *Input) (failed bool) {
	if s.sms == nil || len(s.config.SMSTo) == 0 {
		s.logger.Warn("Critical alert has no SMS route configured", map[string]interface{}{
			"alertType": input.AlertType,
		})
		return true
	}

	text := fmt.Sprintf("%s: %s", subject, input.Message)

	for _, phone := range s.config.SMSTo {
		if _, err := s.sms.SendSMS(ctx, phone, text, s.config.SMSSenderID); err != nil {
			failed = true
			s.logger.Error("Alert SMS failed", map[string]interface{}{
				"phone": phone,
				"error": err.Error(),
			})
		}
	}

	return failed
}

func renderAlert(input *Input) (subject, body string) {
	tmpl, known := alertTemplates[input.AlertType]
	if known {
		subject = fmt.Sprintf(tmpl.Subject, input.Component)
	} else {
		subject = fmt.Sprintf("[carfind] %s alert from %s", input.Severity, input.Component)
	}

	var b strings.Builder
	if known {
		b.WriteString(tmpl.Intro)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Severity:  %s\n", input.Severity)
	fmt.Fprintf(&b, "Component: %s\n", input.Component)
	fmt.Fprintf(&b, "Message:   %s\n", input.Message)

	if len(input.Metadata) > 0 {
		b.WriteString("\nDetails:\n")
		keys := make([]string, 0, len(input.Metadata))
		for k := range input.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", k, input.Metadata[k])
		}
	}

	fmt.Fprintf(&b, "\nRaised at %s\n", time.Now().UTC().Format(time.RFC3339))

	return subject, b.String()
}
