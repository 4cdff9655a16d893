package querylistings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"carfind-workers/internal/models"
)

const (
	TaskType = "query-listings"
)

var (
	ErrListingQueryFailed = errors.New("LISTING_QUERY_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// ListingSearcher is the record-store surface this worker needs.
type ListingSearcher interface {
	SearchListings(ctx context.Context, filter string, page, perPage int, sort string) (*models.SearchResultPage, error)
}

type Handler struct {
	config *Config
	store  ListingSearcher
	logger Logger
}

func NewHandler(config *Config, store ListingSearcher, log Logger) *Handler {
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
		if errors.Is(err, ErrListingQueryFailed) {
			retries = 3
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	perPage := input.PerPage
	if perPage <= 0 {
		perPage = h.config.DefaultPerPage
	}
	if perPage > h.config.MaxPerPage {
		perPage = h.config.MaxPerPage
	}

	sort := input.Sort
	if sort == "" {
		sort = h.config.DefaultSort
	}

	result, err := h.store.SearchListings(ctx, input.Filter, page, perPage, sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingQueryFailed, err)
	}

	h.logger.Info("listings queried", map[string]interface{}{
		"filter":     input.Filter,
		"page":       result.Page,
		"totalItems": result.TotalItems,
		"returned":   len(result.Items),
	})

	// Items must never be null in the completed variables.
	items := result.Items
	if items == nil {
		items = []models.VehicleListing{}
	}

	return &Output{
		Items:      items,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
		Page:       result.Page,
	}, nil
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
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrListingQueryFailed) {
		errorCode = "LISTING_QUERY_FAILED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
