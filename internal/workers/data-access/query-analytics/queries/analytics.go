// internal/workers/data-access/query-analytics/queries/analytics.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DailyMessageCounts aggregates inbound/outbound traffic per day over the
// archive, newest day first. params: days (default 7, max 90).
func DailyMessageCounts(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	days := intParam(params, "days", 7)
	if days < 1 {
		days = 7
	}
	if days > 90 {
		days = 90
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT DATE(created_at) AS day,
		       COUNT(*) FILTER (WHERE message_type = 'incoming') AS incoming,
		       COUNT(*) FILTER (WHERE message_type = 'outgoing') AS outgoing,
		       COUNT(*) AS total
		FROM message_archive
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY DATE(created_at)
		ORDER BY day DESC`, days)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	data := []map[string]interface{}{}
	for rows.Next() {
		var day time.Time
		var incoming, outgoing, total int
		if err := rows.Scan(&day, &incoming, &outgoing, &total); err != nil {
			return nil, 0, 0, err
		}
		data = append(data, map[string]interface{}{
			"day":      day.Format("2006-01-02"),
			"incoming": incoming,
			"outgoing": outgoing,
			"total":    total,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return data, len(data), time.Since(start).Milliseconds(), nil
}

// TopSearchTerms ranks the stored search queries by frequency.
// params: limit (default 10, max 100).
func TopSearchTerms(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	limit := intParam(params, "limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT LOWER(search_query) AS term, COUNT(*) AS searches
		FROM message_archive
		WHERE command_type = 'search' AND search_query <> ''
		GROUP BY LOWER(search_query)
		ORDER BY searches DESC, term ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	data := []map[string]interface{}{}
	for rows.Next() {
		var term string
		var searches int
		if err := rows.Scan(&term, &searches); err != nil {
			return nil, 0, 0, err
		}
		data = append(data, map[string]interface{}{
			"term":     term,
			"searches": searches,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return data, len(data), time.Since(start).Milliseconds(), nil
}

// UserActivity summarises one user's archived traffic. A user with no
// archived messages yields zero counts rather than an error.
// params: userId (required).
func UserActivity(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok || userID == "" {
		return nil, 0, 0, fmt.Errorf("%w: userId", ErrMissingParam)
	}

	start := time.Now()

	var messages, searches int
	var lastMessageAt time.Time

	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) AS messages,
		       COUNT(*) FILTER (WHERE command_type = 'search') AS searches,
		       COALESCE(MAX(created_at), 'epoch'::timestamptz) AS last_message_at
		FROM message_archive
		WHERE user_id = $1`, userID).Scan(&messages, &searches, &lastMessageAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"userId":   userID,
		"messages": messages,
		"searches": searches,
	}
	if messages > 0 {
		result["lastMessageAt"] = lastMessageAt.UTC().Format(time.RFC3339)
	}

	rowCount := 0
	if messages > 0 {
		rowCount = 1
	}

	return result, rowCount, time.Since(start).Milliseconds(), nil
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
