// internal/workers/infrastructure/dedupe-message/config.go
package dedupemessage

import "time"

type Config struct {
	Timeout time.Duration
	// TTL bounds how long a webhook redelivery is still recognized.
	TTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		TTL:     24 * time.Hour,
	}
}
