// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeDailyMessageCounts QueryType = "daily_message_counts"
	QueryTypeTopSearchTerms     QueryType = "top_search_terms"
	QueryTypeUserActivity       QueryType = "user_activity"
)
