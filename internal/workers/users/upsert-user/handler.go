package upsertuser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"carfind-workers/internal/common/metrics"
	"carfind-workers/internal/common/recordstore"
	"carfind-workers/internal/models"
)

const (
	TaskType = "upsert-user"
)

var (
	ErrUserStoreUnavailable = errors.New("RECORD_STORE_UNAVAILABLE")
)

// UserStore is the record-store surface this worker needs.
type UserStore interface {
	FindUserByWaID(ctx context.Context, waID string) (*models.User, error)
	CreateUser(ctx context.Context, fields map[string]interface{}) (*models.User, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	store  UserStore
	logger Logger
}

func NewHandler(config *Config, store UserStore, log Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
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
		if errors.Is(err, ErrUserStoreUnavailable) {
			retries = 3
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.WaID == "" {
		return nil, fmt.Errorf("waID is required")
	}

	user, err := h.store.FindUserByWaID(ctx, input.WaID)
	if err != nil && !errors.Is(err, recordstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrUserStoreUnavailable, err)
	}

	if user != nil {
		metrics.UsersUpserted.WithLabelValues("existing").Inc()

		h.logger.Info("user found", map[string]interface{}{
			"userID":        user.ID,
			"totalSearches": user.TotalSearches,
		})

		return outputFor(user, false), nil
	}

	user, err = h.store.CreateUser(ctx, models.NewUser(input.WaID, input.ProfileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserStoreUnavailable, err)
	}

	metrics.UsersUpserted.WithLabelValues("created").Inc()

	h.logger.Info("user created", map[string]interface{}{
		"userID": user.ID,
	})

	return outputFor(user, true), nil
}

func outputFor(user *models.User, created bool) *Output {
	return &Output{
		UserID:          user.ID,
		Created:         created,
		TotalSearches:   user.TotalSearches,
		CurrentPage:     user.CurrentPage,
		LastSearchQuery: user.LastSearchQuery,
	}
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
