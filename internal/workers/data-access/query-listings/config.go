// internal/workers/data-access/query-listings/config.go
package querylistings

import "time"

type Config struct {
	Timeout        time.Duration
	DefaultSort    string
	DefaultPerPage int
	MaxPerPage     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        15 * time.Second,
		DefaultSort:    "-posted_date",
		DefaultPerPage: 5,
		MaxPerPage:     50,
	}
}
