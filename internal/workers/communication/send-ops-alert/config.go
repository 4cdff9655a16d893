package sendopsalert

import (
	"fmt"
	"time"

	"carfind-workers/internal/common/config"
	"carfind-workers/internal/common/validation"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FromEmail     string        `mapstructure:"from_email"`
	EmailTo       []string      `mapstructure:"email_to"`
	SMSTo         []string      `mapstructure:"sms_to"`
	SMSSenderID   string        `mapstructure:"sms_sender_id"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 2,
		Timeout:       30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from_email is required")
	}
	if !validation.ValidateEmail(c.FromEmail) {
		return fmt.Errorf("from_email %q is not a valid address", c.FromEmail)
	}
	if len(c.EmailTo) == 0 {
		return fmt.Errorf("at least one email recipient is required")
	}
	for _, to := range c.EmailTo {
		if !validation.ValidateEmail(to) {
			return fmt.Errorf("email recipient %q is not a valid address", to)
		}
	}
	for _, to := range c.SMSTo {
		if !validation.ValidatePhone(to) {
			return fmt.Errorf("sms recipient %q is not a valid phone number", to)
		}
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[TaskType]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
		}

		cfg.FromEmail = appConfig.Integrations.AWS.SES.FromEmail
		cfg.EmailTo = appConfig.Notifications.Email.To
		cfg.SMSTo = appConfig.Notifications.SMS.To
		cfg.SMSSenderID = appConfig.Integrations.AWS.SNS.DefaultSMSSenderID
	}

	return cfg
}
