package logmessage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"carfind-workers/internal/models"
)

const (
	TaskType = "log-message"
)

var (
	ErrMessageLogFailed = errors.New("RECORD_STORE_UNAVAILABLE")
)

// LogStore is the record-store surface this worker needs.
type LogStore interface {
	CreateMessageLog(ctx context.Context, fields map[string]interface{}) (string, error)
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
	store  LogStore
	db     *sql.DB
	logger Logger
}

// NewHandler wires the worker. db may be nil; archival is skipped then.
func NewHandler(config *Config, store LogStore, db *sql.DB, log Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		db:     db,
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
		if errors.Is(err, ErrMessageLogFailed) {
			retries = 3
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	if input.Direction != models.MessageIncoming && input.Direction != models.MessageOutgoing {
		return nil, fmt.Errorf("direction must be %q or %q", models.MessageIncoming, models.MessageOutgoing)
	}

	correlationID := uuid.NewString()

	fields := map[string]interface{}{
		"user":           input.UserID,
		"content":        input.Content,
		"message_type":   input.Direction,
		"correlation_id": correlationID,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if input.CommandType != "" {
		fields["command_type"] = input.CommandType
	}
	if input.SearchQuery != "" {
		fields["search_query"] = input.SearchQuery
	}
	if input.SearchResults != nil {
		fields["search_results"] = input.SearchResults
	}

	logID, err := h.store.CreateMessageLog(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageLogFailed, err)
	}

	h.archive(ctx, input, correlationID)

	h.logger.Info("message logged", map[string]interface{}{
		"logID":         logID,
		"direction":     input.Direction,
		"correlationID": correlationID,
	})

	return &Output{
		LogID:         logID,
		CorrelationID: correlationID,
	}, nil
}

// archive mirrors the log entry into Postgres for the analytics queries.
// The record store stays the source of truth, so a failed insert is
// logged and the job still completes.
func (h *Handler) archive(ctx context.Context, input *Input, correlationID string) {
	if h.db == nil {
		return
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO message_archive (user_id, content, message_type, command_type, search_query, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		input.UserID, input.Content, input.Direction, input.CommandType, input.SearchQuery, correlationID)
	if err != nil {
		h.logger.Warn("archive insert failed", map[string]interface{}{
			"correlationID": correlationID,
			"error":         err.Error(),
		})
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
