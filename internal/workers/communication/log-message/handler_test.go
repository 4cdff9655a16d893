// internal/workers/communication/log-message/handler_test.go
package logmessage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carfind-workers/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	newLogger := &TestLogger{
		t:      l.t,
		fields: make(map[string]interface{}),
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{})
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// ==========================
// Test Store Implementation
// ==========================

type stubStore struct {
	logID      string
	err        error
	lastFields map[string]interface{}
}

func (s *stubStore) CreateMessageLog(ctx context.Context, fields map[string]interface{}) (string, error) {
	s.lastFields = fields
	if s.err != nil {
		return "", s.err
	}
	return s.logID, nil
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_LogsIncomingMessage(t *testing.T) {
	store := &stubStore{logID: "log_1"}
	handler := NewHandler(createTestConfig(), store, nil, NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID:    "rec_1",
		Content:   "find toyota aqua",
		Direction: models.MessageIncoming,
	})

	require.NoError(t, err)
	assert.Equal(t, "log_1", output.LogID)

	_, err = uuid.Parse(output.CorrelationID)
	assert.NoError(t, err, "correlation id should be a UUID")

	require.NotNil(t, store.lastFields)
	assert.Equal(t, "rec_1", store.lastFields["user"])
	assert.Equal(t, "find toyota aqua", store.lastFields["content"])
	assert.Equal(t, models.MessageIncoming, store.lastFields["message_type"])
	assert.Equal(t, output.CorrelationID, store.lastFields["correlation_id"])
	assert.NotContains(t, store.lastFields, "command_type")
	assert.NotContains(t, store.lastFields, "search_query")

	ts, ok := store.lastFields["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestExecute_SearchFieldsCarriedThrough(t *testing.T) {
	store := &stubStore{logID: "log_2"}
	handler := NewHandler(createTestConfig(), store, nil, NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		UserID:      "rec_1",
		Content:     "Found 12 vehicles...",
		Direction:   models.MessageOutgoing,
		CommandType: models.CommandSearch,
		SearchQuery: "toyota aqua",
		SearchResults: map[string]interface{}{
			"totalItems": 12,
			"page":       1,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, models.CommandSearch, store.lastFields["command_type"])
	assert.Equal(t, "toyota aqua", store.lastFields["search_query"])
	assert.NotNil(t, store.lastFields["search_results"])
}

// ==========================
// Archive Tests
// ==========================

func TestExecute_ArchivesWhenPostgresConfigured(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO message_archive`).
		WithArgs("rec_1", "hello", models.MessageIncoming, "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := &stubStore{logID: "log_3"}
	handler := NewHandler(createTestConfig(), store, db, NewTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{
		UserID:    "rec_1",
		Content:   "hello",
		Direction: models.MessageIncoming,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ArchiveFailureStillCompletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO message_archive`).
		WillReturnError(errors.New("relation does not exist"))

	store := &stubStore{logID: "log_4"}
	handler := NewHandler(createTestConfig(), store, db, NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		UserID:    "rec_1",
		Content:   "hello",
		Direction: models.MessageIncoming,
	})

	require.NoError(t, err)
	assert.Equal(t, "log_4", output.LogID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Tests
// ==========================

func TestExecute_InvalidDirection(t *testing.T) {
	handler := NewHandler(createTestConfig(), &stubStore{}, nil, NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		UserID:    "rec_1",
		Content:   "hello",
		Direction: "sideways",
	})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMessageLogFailed)
}

func TestExecute_StoreFailureIsRetryable(t *testing.T) {
	store := &stubStore{err: errors.New("store unreachable")}
	handler := NewHandler(createTestConfig(), store, nil, NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		UserID:    "rec_1",
		Content:   "hello",
		Direction: models.MessageIncoming,
	})

	assert.ErrorIs(t, err, ErrMessageLogFailed)
}
