// internal/workers/conversation/generate-response/handler_test.go
package generateresponse

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carfind-workers/internal/common/database"
	"carfind-workers/internal/conversation"
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
	user      *models.User
	getErr    error
	page      *models.SearchResultPage
	searchErr error
	updateErr error

	searchCalls int
	lastFilter  string
	lastPage    int
	lastPerPage int
	lastSort    string

	updated map[string]interface{}
}

func (s *stubStore) GetUser(_ context.Context, _ string) (*models.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.user, nil
}

func (s *stubStore) UpdateUser(_ context.Context, _ string, fields map[string]interface{}) (*models.User, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updated = fields
	return s.user, nil
}

func (s *stubStore) SearchListings(_ context.Context, filter string, page, perPage int, sort string) (*models.SearchResultPage, error) {
	s.searchCalls++
	s.lastFilter = filter
	s.lastPage = page
	s.lastPerPage = perPage
	s.lastSort = sort
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.page, nil
}

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:           5 * time.Second,
		PerPage:           5,
		Sort:              "-posted_date",
		LockTTL:           30 * time.Second,
		LockWait:          200 * time.Millisecond,
		LockRetryInterval: 20 * time.Millisecond,
	}
}

func newTestHandler(t *testing.T, store *stubStore) (*Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	locks := &database.RedisClient{Client: rdb}
	return NewHandler(createTestConfig(), store, locks, NewTestLogger(t)), mr
}

func resultPage(totalItems, totalPages, page, count int) *models.SearchResultPage {
	items := make([]models.VehicleListing, count)
	for i := range items {
		items[i] = models.VehicleListing{
			ID:         fmt.Sprintf("lst_%d", i+1),
			Title:      "Toyota Aqua 2017",
			Pricing:    6500000,
			Mileage:    45000,
			PostedDate: "2026-08-20",
			Link:       "https://ikman.example/ads/toyota-aqua-2017",
		}
	}
	return &models.SearchResultPage{
		Items:      items,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Page:       page,
	}
}

func knownUser() *models.User {
	return &models.User{
		ID:            "rec_1",
		WaID:          "94771234567",
		ProfileName:   "Nimal",
		TotalSearches: 4,
		CurrentPage:   1,
		Status:        models.UserStatusActive,
	}
}

// ==========================
// Static Intent Tests
// ==========================

func TestExecute_GreetingTouchesInteractionOnly(t *testing.T) {
	store := &stubStore{user: knownUser()}
	handler, mr := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "Hi",
	})

	require.NoError(t, err)
	assert.Equal(t, conversation.GreetingResponse, output.ResponseText)
	assert.Equal(t, "greeting", output.ResponseKind)
	assert.False(t, output.SearchPerformed)
	assert.Zero(t, output.Page)

	require.Len(t, store.updated, 1)
	_, err = time.Parse(time.RFC3339, store.updated["last_interaction"].(string))
	assert.NoError(t, err)

	assert.Equal(t, 0, store.searchCalls)
	assert.False(t, mr.Exists("user-turn:94771234567"))
}

func TestExecute_UnknownGetsHelpHint(t *testing.T) {
	store := &stubStore{user: knownUser()}
	handler, _ := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "how much is a lambo",
	})

	require.NoError(t, err)
	assert.Equal(t, conversation.UnknownResponse, output.ResponseText)
	assert.Equal(t, "unknown", output.ResponseKind)
	assert.False(t, output.SearchPerformed)
}

// ==========================
// Search Tests
// ==========================

func TestExecute_SearchStoresQueryAndCounters(t *testing.T) {
	store := &stubStore{
		user: knownUser(),
		page: resultPage(12, 3, 1, 2),
	}
	handler, _ := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "Find toyota aqua",
	})

	require.NoError(t, err)
	assert.Equal(t, KindSearchResults, output.ResponseKind)
	assert.True(t, output.SearchPerformed)
	assert.Equal(t, 1, output.Page)
	assert.Contains(t, output.ResponseText, "Found 12 vehicles (showing page 1 of 3)")
	assert.Contains(t, output.ResponseText, "Toyota Aqua 2017")
	assert.Contains(t, output.ResponseText, "Send 'next' to see more results.")

	assert.Equal(t, `title ~ "toyota" && title ~ "aqua"`, store.lastFilter)
	assert.Equal(t, 1, store.lastPage)
	assert.Equal(t, 5, store.lastPerPage)
	assert.Equal(t, "-posted_date", store.lastSort)

	require.Len(t, store.updated, 4)
	assert.Equal(t, "toyota aqua", store.updated["last_search_query"])
	assert.Equal(t, 1, store.updated["current_page"])
	assert.Equal(t, 5, store.updated["total_searches"])
	assert.Contains(t, store.updated, "last_interaction")
}

func TestExecute_SearchWithNoMatchesStillCounts(t *testing.T) {
	store := &stubStore{
		user: &models.User{ID: "rec_2", WaID: "94770000001", TotalSearches: 0},
		page: resultPage(0, 0, 1, 0),
	}
	handler, _ := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94770000001",
		UserID:      "rec_2",
		MessageText: "find lada niva",
	})

	require.NoError(t, err)
	assert.Equal(t, conversation.NoResultsResponse, output.ResponseText)
	assert.Equal(t, KindNoResults, output.ResponseKind)
	assert.True(t, output.SearchPerformed)

	assert.Equal(t, "lada niva", store.updated["last_search_query"])
	assert.Equal(t, 1, store.updated["total_searches"])
}

// ==========================
// Pagination Tests
// ==========================

func TestExecute_NextPageReplaysStoredQuery(t *testing.T) {
	user := knownUser()
	user.LastSearchQuery = "toyota aqua"
	user.CurrentPage = 2

	store := &stubStore{user: user, page: resultPage(12, 3, 3, 2)}
	handler, _ := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "next",
	})

	require.NoError(t, err)
	assert.Equal(t, KindSearchResults, output.ResponseKind)
	assert.True(t, output.SearchPerformed)
	assert.Equal(t, 3, output.Page)
	assert.Contains(t, output.ResponseText, "showing page 3 of 3")

	assert.Equal(t, `title ~ "toyota" && title ~ "aqua"`, store.lastFilter)
	assert.Equal(t, 3, store.lastPage)

	require.Len(t, store.updated, 2)
	assert.Equal(t, 3, store.updated["current_page"])
	assert.Contains(t, store.updated, "last_interaction")
}

func TestExecute_NextPageWithoutHistory(t *testing.T) {
	store := &stubStore{user: knownUser()}
	handler, _ := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "next",
	})

	require.NoError(t, err)
	assert.Equal(t, conversation.NoPreviousSearchResponse, output.ResponseText)
	assert.Equal(t, KindNoPreviousSearch, output.ResponseKind)
	assert.False(t, output.SearchPerformed)
	assert.Zero(t, output.Page)

	assert.Equal(t, 0, store.searchCalls)
	require.Len(t, store.updated, 1)
}

func TestExecute_NextPagePastEndKeepsAnchor(t *testing.T) {
	user := knownUser()
	user.LastSearchQuery = "toyota aqua"
	user.CurrentPage = 3

	store := &stubStore{user: user, page: resultPage(12, 3, 4, 0)}
	handler, _ := newTestHandler(t, store)

	output, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "next",
	})

	require.NoError(t, err)
	assert.Equal(t, conversation.EndOfResultsResponse, output.ResponseText)
	assert.Equal(t, KindEndOfResults, output.ResponseKind)
	assert.True(t, output.SearchPerformed)
	assert.Equal(t, 4, output.Page)

	require.Len(t, store.updated, 1)
	assert.NotContains(t, store.updated, "current_page")
}

// ==========================
// Turn Lock Tests
// ==========================

func TestExecute_TurnLockHeldTimesOut(t *testing.T) {
	store := &stubStore{user: knownUser()}
	handler, mr := newTestHandler(t, store)

	require.NoError(t, mr.Set("user-turn:94771234567", "1"))

	_, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "hi",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserLockTimeout)
	assert.Equal(t, 0, store.searchCalls)
	assert.Nil(t, store.updated)
}

func TestExecute_LockReleasedAfterStoreFailure(t *testing.T) {
	store := &stubStore{user: knownUser(), updateErr: errors.New("store unreachable")}
	handler, mr := newTestHandler(t, store)

	_, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "hi",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, mr.Exists("user-turn:94771234567"))
}

func TestExecute_RedisOutageIsRetryable(t *testing.T) {
	store := &stubStore{user: knownUser()}
	handler, mr := newTestHandler(t, store)

	mr.SetError("connection refused")

	_, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "hi",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserLockTimeout)
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_SearchFailurePropagates(t *testing.T) {
	store := &stubStore{user: knownUser(), searchErr: errors.New("record store down")}
	handler, _ := newTestHandler(t, store)

	_, err := handler.Execute(context.Background(), &Input{
		WaID:        "94771234567",
		UserID:      "rec_1",
		MessageText: "find toyota aqua",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "record store down")
	assert.Nil(t, store.updated)
}

func TestExecute_MissingIdentifiers(t *testing.T) {
	store := &stubStore{user: knownUser()}
	handler, _ := newTestHandler(t, store)

	_, err := handler.Execute(context.Background(), &Input{MessageText: "hi"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrUserLockTimeout)
}
