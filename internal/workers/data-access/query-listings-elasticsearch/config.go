// internal/workers/data-access/query-listings-elasticsearch/config.go
package querylistingselasticsearch

import "time"

type Config struct {
	Timeout        time.Duration
	Index          string
	DefaultPerPage int
	MaxPerPage     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        15 * time.Second,
		Index:          "vehicle_listings",
		DefaultPerPage: 5,
		MaxPerPage:     50,
	}
}
