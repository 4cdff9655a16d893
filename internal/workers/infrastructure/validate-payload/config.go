// internal/workers/infrastructure/validate-payload/config.go
package validatepayload

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
