package queryanalytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"carfind-workers/internal/common/logger"
	"carfind-workers/internal/models"
)

func createTestConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "daily message counts",
			input: &Input{
				QueryType:  string(models.QueryTypeDailyMessageCounts),
				Parameters: map[string]interface{}{"days": float64(7)},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"day", "incoming", "outgoing", "total"}).
					AddRow(time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), 12, 11, 23).
					AddRow(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), 8, 8, 16)
				mock.ExpectQuery(`FROM message_archive`).
					WithArgs(7).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "2026-08-21", data[0]["day"])
				assert.Equal(t, 12, data[0]["incoming"])
				assert.Equal(t, 23, data[0]["total"])
			},
		},
		{
			name: "top search terms with pagination limit",
			input: &Input{
				QueryType:  string(models.QueryTypeTopSearchTerms),
				Pagination: Pagination{Limit: 2},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"term", "searches"}).
					AddRow("toyota aqua", 41).
					AddRow("honda vezel", 28)
				mock.ExpectQuery(`command_type = 'search'`).
					WithArgs(2).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				data := output.Data.([]map[string]interface{})
				assert.Equal(t, "toyota aqua", data[0]["term"])
				assert.Equal(t, 41, data[0]["searches"])
			},
		},
		{
			name: "user activity",
			input: &Input{
				QueryType:  string(models.QueryTypeUserActivity),
				Parameters: map[string]interface{}{"userId": "u1"},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"messages", "searches", "last_message_at"}).
					AddRow(14, 6, time.Date(2026, 8, 21, 9, 30, 0, 0, time.UTC))
				mock.ExpectQuery(`WHERE user_id = \$1`).
					WithArgs("u1").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)

				data := output.Data.(map[string]interface{})
				assert.Equal(t, "u1", data["userId"])
				assert.Equal(t, 14, data["messages"])
				assert.Equal(t, 6, data["searches"])
				assert.Equal(t, "2026-08-21T09:30:00Z", data["lastMessageAt"])
			},
		},
		{
			name: "user with no archived messages",
			input: &Input{
				QueryType:  string(models.QueryTypeUserActivity),
				Parameters: map[string]interface{}{"userId": "ghost"},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"messages", "searches", "last_message_at"}).
					AddRow(0, 0, time.Unix(0, 0).UTC())
				mock.ExpectQuery(`WHERE user_id = \$1`).
					WithArgs("ghost").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 0, output.RowCount)

				data := output.Data.(map[string]interface{})
				assert.Equal(t, 0, data["messages"])
				assert.NotContains(t, data, "lastMessageAt")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))

			output, err := handler.execute(context.Background(), tt.input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())

			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

// ==========================
// Error Tests
// ==========================

func TestHandler_Execute_UnknownQueryType(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))

	_, err = handler.execute(context.Background(), &Input{QueryType: "franchise_details"})

	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestHandler_Execute_MissingUserID(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))

	_, err = handler.execute(context.Background(), &Input{
		QueryType: string(models.QueryTypeUserActivity),
	})

	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
	assert.Contains(t, err.Error(), "missing required parameter")
}

func TestHandler_Execute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM message_archive`).
		WillReturnError(errors.New("connection reset"))

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))

	_, err = handler.execute(context.Background(), &Input{
		QueryType: string(models.QueryTypeDailyMessageCounts),
	})

	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}
