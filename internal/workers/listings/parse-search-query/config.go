// internal/workers/listings/parse-search-query/config.go
package parsesearchquery

import "time"

type Config struct {
	Timeout time.Duration
	// Brands overrides the built-in brand table when set.
	Brands []string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
