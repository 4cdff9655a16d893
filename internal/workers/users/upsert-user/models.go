// internal/workers/users/upsert-user/models.go
package upsertuser

// Input is the job payload for user upserts.
type Input struct {
	WaID        string `json:"waID"`
	ProfileName string `json:"profileName"`
}

// Output echoes the stored user so downstream steps avoid a second fetch.
type Output struct {
	UserID          string `json:"userID"`
	Created         bool   `json:"created"`
	TotalSearches   int    `json:"totalSearches"`
	CurrentPage     int    `json:"currentPage"`
	LastSearchQuery string `json:"lastSearchQuery,omitempty"`
}
