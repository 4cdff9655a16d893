package models

import "time"

// User is a WhatsApp user record in the whatsapp_users collection.
type User struct {
	ID              string `json:"id"`
	WaID            string `json:"wa_id"`
	ProfileName     string `json:"profile_name"`
	LastInteraction string `json:"last_interaction"`
	TotalSearches   int    `json:"total_searches"`
	CurrentPage     int    `json:"current_page"`
	LastSearchQuery string `json:"last_search_query,omitempty"`
	Status          string `json:"status"`
	Created         string `json:"created,omitempty"`
	Updated         string `json:"updated,omitempty"`
}

const UserStatusActive = "active"

// HasPreviousSearch reports whether a "next" request can be served.
func (u *User) HasPreviousSearch() bool {
	return u.LastSearchQuery != ""
}

// NextPage returns the page a "next" request should fetch. A missing or
// zero current_page counts as page 1.
func (u *User) NextPage() int {
	page := u.CurrentPage
	if page < 1 {
		page = 1
	}
	return page + 1
}

// NewUser builds the field set for a fresh whatsapp_users record. The
// store stamps created/updated itself.
func NewUser(waID, profileName string) map[string]interface{} {
	return map[string]interface{}{
		"wa_id":            waID,
		"profile_name":     profileName,
		"last_interaction": time.Now().UTC().Format(time.RFC3339),
		"total_searches":   0,
		"current_page":     1,
		"status":           UserStatusActive,
	}
}

// UserFromRecord maps a record-store item onto a User. Numeric fields
// arrive as JSON floats and are coerced.
func UserFromRecord(rec map[string]interface{}) User {
	return User{
		ID:              asString(rec["id"]),
		WaID:            asString(rec["wa_id"]),
		ProfileName:     asString(rec["profile_name"]),
		LastInteraction: asString(rec["last_interaction"]),
		TotalSearches:   asInt(rec["total_searches"]),
		CurrentPage:     asInt(rec["current_page"]),
		LastSearchQuery: asString(rec["last_search_query"]),
		Status:          asString(rec["status"]),
		Created:         asString(rec["created"]),
		Updated:         asString(rec["updated"]),
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
