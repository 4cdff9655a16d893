package parsesearchquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"carfind-workers/internal/common/metrics"
	"carfind-workers/internal/query"
)

const (
	TaskType = "parse-search-query"
)

var (
	ErrEmptySearchQuery = errors.New("EMPTY_SEARCH_QUERY")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	tokenizer *query.Tokenizer
	logger    Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	tokenizer := query.NewTokenizer()
	if len(config.Brands) > 0 {
		tokenizer = query.NewTokenizerWithBrands(config.Brands)
	}

	return &Handler{
		config:    config,
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
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute is total over non-blank input: malformed fragments degrade to
// residual title terms instead of failing the job.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	term := strings.TrimSpace(input.SearchQuery)
	if term == "" {
		metrics.SearchesParsed.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: search query is blank", ErrEmptySearchQuery)
	}

	parsed := h.tokenizer.ParseQuery(term)
	filter := query.Build(parsed)

	conditions := make([]Condition, 0, len(parsed.Conditions))
	for _, c := range parsed.Conditions {
		conditions = append(conditions, Condition{
			Field:      c.Field,
			Operator:   c.Operator,
			Value:      c.Value,
			Combinator: c.Combinator,
		})
	}

	outcome := "residual"
	if len(conditions) > 0 {
		outcome = "structured"
	}
	metrics.SearchesParsed.WithLabelValues(outcome).Inc()

	h.logger.Info("search query parsed", map[string]interface{}{
		"conditionCount": len(conditions),
		"residualCount":  len(parsed.Residual),
		"filter":         filter,
	})

	return &Output{
		Filter:         filter,
		Conditions:     conditions,
		ResidualTerms:  parsed.Residual,
		ConditionCount: len(conditions),
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrEmptySearchQuery) {
		errorCode = "EMPTY_SEARCH_QUERY"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
