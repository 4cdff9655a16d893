// internal/workers/conversation/generate-response/config.go
package generateresponse

import "time"

type Config struct {
	Timeout time.Duration
	// Brands overrides the built-in brand table when set.
	Brands []string

	PerPage int
	Sort    string

	// LockTTL bounds how long a crashed worker can wedge a user's turn.
	LockTTL           time.Duration
	LockWait          time.Duration
	LockRetryInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           30 * time.Second,
		PerPage:           5,
		Sort:              "-posted_date",
		LockTTL:           30 * time.Second,
		LockWait:          5 * time.Second,
		LockRetryInterval: 100 * time.Millisecond,
	}
}
