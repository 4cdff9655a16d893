package generateresponse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"carfind-workers/internal/common/metrics"
	"carfind-workers/internal/conversation"
	"carfind-workers/internal/models"
	"carfind-workers/internal/query"
)

const (
	TaskType = "generate-response"

	lockPrefix = "user-turn:"
)

var (
	ErrStoreUnavailable = errors.New("RECORD_STORE_UNAVAILABLE")
	ErrUserLockTimeout  = errors.New("USER_LOCK_TIMEOUT")
)

// ConversationStore is the record-store surface this worker needs.
type ConversationStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)
	SearchListings(ctx context.Context, filter string, page, perPage int, sort string) (*models.SearchResultPage, error)
}

// UserLocker is the Redis surface backing the per-user turn lock.
type UserLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	store     ConversationStore
	locks     UserLocker
	tokenizer *query.Tokenizer
	logger    Logger
}

func NewHandler(config *Config, store ConversationStore, locks UserLocker, log Logger) *Handler {
	tokenizer := query.NewTokenizer()
	if len(config.Brands) > 0 {
		tokenizer = query.NewTokenizerWithBrands(config.Brands)
	}

	return &Handler{
		config:    config,
		store:     store,
		locks:     locks,
		tokenizer: tokenizer,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		switch {
		case errors.Is(err, ErrStoreUnavailable):
			retries = 3
		case errors.Is(err, ErrUserLockTimeout):
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.WaID == "" || input.UserID == "" {
		return nil, fmt.Errorf("waID and userID are required")
	}

	unlock, err := h.acquireTurn(ctx, input.WaID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cls := conversation.Classify(input.MessageText)
	metrics.MessagesClassified.WithLabelValues(string(cls.Intent)).Inc()

	var output *Output
	switch cls.Intent {
	case conversation.IntentSearch:
		output, err = h.freshSearch(ctx, input.UserID, cls.SearchTerm)
	case conversation.IntentNextPage:
		output, err = h.nextPage(ctx, input.UserID)
	default:
		output, err = h.staticReply(ctx, input.UserID, cls.Intent)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("conversation turn served", map[string]interface{}{
		"intent":       string(cls.Intent),
		"responseKind": output.ResponseKind,
		"page":         output.Page,
	})

	return output, nil
}

// acquireTurn serializes turns per WhatsApp user. Contention past the
// wait budget and Redis trouble both surface as ErrUserLockTimeout; the
// retried job lands once the holder finishes or the TTL clears a
// crashed one.
func (h *Handler) acquireTurn(ctx context.Context, waID string) (func(), error) {
	key := lockPrefix + waID
	deadline := time.Now().Add(h.config.LockWait)

	for {
		ok, err := h.locks.SetNX(ctx, key, 1, h.config.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUserLockTimeout, err)
		}
		if ok {
			return func() {
				if err := h.locks.Del(context.Background(), key); err != nil {
					h.logger.Warn("turn lock not released", map[string]interface{}{
						"waID":  waID,
						"error": err.Error(),
					})
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: turn already in flight for %s", ErrUserLockTimeout, waID)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUserLockTimeout, ctx.Err())
		case <-time.After(h.config.LockRetryInterval):
		}
	}
}

func (h *Handler) staticReply(ctx context.Context, userID string, intent conversation.Intent) (*Output, error) {
	text, ok := conversation.StaticResponse(intent)
	if !ok {
		intent = conversation.IntentUnknown
		text = conversation.UnknownResponse
	}

	if err := h.touchUser(ctx, userID, nil); err != nil {
		return nil, err
	}

	return &Output{
		ResponseText: text,
		ResponseKind: string(intent),
	}, nil
}

func (h *Handler) freshSearch(ctx context.Context, userID, term string) (*Output, error) {
	filter := h.tokenizer.Parse(term)

	page, err := h.store.SearchListings(ctx, filter, 1, h.config.PerPage, h.config.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The search counter is absolute, so read the current value first.
	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	err = h.touchUser(ctx, userID, map[string]interface{}{
		"last_search_query": term,
		"current_page":      1,
		"total_searches":    user.TotalSearches + 1,
	})
	if err != nil {
		return nil, err
	}

	kind := KindSearchResults
	if len(page.Items) == 0 {
		kind = KindNoResults
	}

	return &Output{
		ResponseText:    conversation.FormatSearchResults(page),
		ResponseKind:    kind,
		SearchPerformed: true,
		Page:            1,
	}, nil
}

func (h *Handler) nextPage(ctx context.Context, userID string) (*Output, error) {
	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !user.HasPreviousSearch() {
		if err := h.touchUser(ctx, userID, nil); err != nil {
			return nil, err
		}
		return &Output{
			ResponseText: conversation.NoPreviousSearchResponse,
			ResponseKind: KindNoPreviousSearch,
		}, nil
	}

	pageNum := user.NextPage()
	filter := h.tokenizer.Parse(user.LastSearchQuery)

	page, err := h.store.SearchListings(ctx, filter, pageNum, h.config.PerPage, h.config.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// current_page only advances when the page had listings, so a user
	// paging past the end stays anchored instead of drifting.
	if len(page.Items) == 0 {
		if err := h.touchUser(ctx, userID, nil); err != nil {
			return nil, err
		}
		return &Output{
			ResponseText:    conversation.EndOfResultsResponse,
			ResponseKind:    KindEndOfResults,
			SearchPerformed: true,
			Page:            pageNum,
		}, nil
	}

	err = h.touchUser(ctx, userID, map[string]interface{}{
		"current_page": pageNum,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		ResponseText:    conversation.FormatSearchResults(page),
		ResponseKind:    KindSearchResults,
		SearchPerformed: true,
		Page:            pageNum,
	}, nil
}

// touchUser stamps last_interaction plus whatever the branch changed.
func (h *Handler) touchUser(ctx context.Context, userID string, extra map[string]interface{}) error {
	fields := map[string]interface{}{
		"last_interaction": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range extra {
		fields[k] = v
	}

	if _, err := h.store.UpdateUser(ctx, userID, fields); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
