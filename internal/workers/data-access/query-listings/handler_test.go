// internal/workers/data-access/query-listings/handler_test.go
package querylistings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

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
// Store Stub
// ==========================

type stubStore struct {
	gotFilter  string
	gotPage    int
	gotPerPage int
	gotSort    string

	page *models.SearchResultPage
	err  error
}

func (s *stubStore) SearchListings(_ context.Context, filter string, page, perPage int, sort string) (*models.SearchResultPage, error) {
	s.gotFilter = filter
	s.gotPage = page
	s.gotPerPage = perPage
	s.gotSort = sort
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_AppliesDefaults(t *testing.T) {
	store := &stubStore{
		page: &models.SearchResultPage{
			Items:      []models.VehicleListing{{ID: "v1", Title: "Toyota Aqua 2017"}},
			TotalItems: 1,
			TotalPages: 1,
			Page:       1,
		},
	}
	handler := NewHandler(LoadConfig(), store, NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Filter: `title ~ "aqua"`})

	assert.NoError(t, err)
	assert.Equal(t, `title ~ "aqua"`, store.gotFilter)
	assert.Equal(t, 1, store.gotPage)
	assert.Equal(t, 5, store.gotPerPage)
	assert.Equal(t, "-posted_date", store.gotSort)
	assert.Equal(t, 1, output.TotalItems)
	assert.Len(t, output.Items, 1)
}

func TestExecute_CapsPerPage(t *testing.T) {
	store := &stubStore{page: &models.SearchResultPage{Page: 1}}
	handler := NewHandler(LoadConfig(), store, NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Filter: "", PerPage: 500, Page: 3})

	assert.NoError(t, err)
	assert.Equal(t, 50, store.gotPerPage)
	assert.Equal(t, 3, store.gotPage)
}

func TestExecute_NegativePageBecomesFirst(t *testing.T) {
	store := &stubStore{page: &models.SearchResultPage{Page: 1}}
	handler := NewHandler(LoadConfig(), store, NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Page: -2})

	assert.NoError(t, err)
	assert.Equal(t, 1, store.gotPage)
}

func TestExecute_EmptyResultKeepsItemsNonNil(t *testing.T) {
	store := &stubStore{page: &models.SearchResultPage{Page: 2, TotalItems: 5, TotalPages: 1}}
	handler := NewHandler(LoadConfig(), store, NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Page: 2})

	assert.NoError(t, err)
	assert.NotNil(t, output.Items)
	assert.Empty(t, output.Items)
}

func TestExecute_StoreFailure(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	handler := NewHandler(LoadConfig(), store, NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Filter: `title ~ "aqua"`})

	assert.ErrorIs(t, err, ErrListingQueryFailed)
	assert.Contains(t, err.Error(), "connection refused")
}
