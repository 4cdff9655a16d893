// internal/workers/infrastructure/dedupe-message/handler_test.go
package dedupemessage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carfind-workers/internal/common/database"
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
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		TTL:     24 * time.Hour,
	}
}

func newMiniredisHandler(t *testing.T) (*Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	wrapper := &database.RedisClient{Client: rdb}
	return NewHandler(createTestConfig(), wrapper, NewTestLogger(t)), mr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_FirstDeliveryPasses(t *testing.T) {
	handler, mr := newMiniredisHandler(t)

	output, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.first"})

	require.NoError(t, err)
	assert.False(t, output.Duplicate)
	assert.True(t, mr.Exists("wamid:wamid.first"))
	assert.Equal(t, 24*time.Hour, mr.TTL("wamid:wamid.first"))
}

func TestExecute_RedeliveryIsDuplicate(t *testing.T) {
	handler, _ := newMiniredisHandler(t)

	first, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.twice"})
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.twice"})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
}

func TestExecute_DistinctMessagesDoNotCollide(t *testing.T) {
	handler, _ := newMiniredisHandler(t)

	_, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.a"})
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.b"})
	require.NoError(t, err)
	assert.False(t, output.Duplicate)
}

func TestExecute_SeenAgainAfterExpiry(t *testing.T) {
	handler, mr := newMiniredisHandler(t)

	_, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.stale"})
	require.NoError(t, err)

	mr.FastForward(25 * time.Hour)

	output, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.stale"})
	require.NoError(t, err)
	assert.False(t, output.Duplicate, "expired key must not count as a duplicate")
}

// ==========================
// Command Shape Tests
// ==========================

func TestExecute_IssuesSetNXWithTTL(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	mock.ExpectSetNX("wamid:wamid.exact", 1, 24*time.Hour).SetVal(true)

	wrapper := &database.RedisClient{Client: rdb}
	handler := NewHandler(createTestConfig(), wrapper, NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.exact"})

	require.NoError(t, err)
	assert.False(t, output.Duplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Tests
// ==========================

func TestExecute_RedisFailureIsRetryable(t *testing.T) {
	handler, mr := newMiniredisHandler(t)
	mr.SetError("LOADING Redis is loading the dataset in memory")

	_, err := handler.Execute(context.Background(), &Input{MessageID: "wamid.err"})

	assert.ErrorIs(t, err, ErrDedupeCheckFailed)
}

func TestExecute_MissingMessageID(t *testing.T) {
	handler, _ := newMiniredisHandler(t)

	_, err := handler.Execute(context.Background(), &Input{})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDedupeCheckFailed)
}
