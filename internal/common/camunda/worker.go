// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"carfind-workers/internal/common/errors"
)

// JobHandler is the shape every worker handler exposes. Handlers complete
// or fail the job themselves through the JobClient.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// CamundaWorker tracks one open job subscription so it can be closed on
// shutdown.
type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job subscription for taskType and starts polling.
// A panicking handler fails only its own job; the subscription keeps
// polling.
func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandler,
	logger *zap.Logger,
) *CamundaWorker {
	errHandler := errors.NewErrorHandler(&zapErrorLogger{logger})

	handle := func(jobClient worker.JobClient, job entities.Job) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("worker handler panicked",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Any("panic", r),
				)
				errHandler.HandleJobError(context.Background(), jobClient, job,
					fmt.Errorf("panic in %s handler: %v", taskType, r))
			}
		}()
		handler.Handle(jobClient, job)
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handle).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// TaskType returns the job type this worker polls.
func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop drains and closes the job subscription. The Zeebe client itself is
// owned by the caller.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}

// zapErrorLogger bridges the zap logger to the errors package's Logger.
type zapErrorLogger struct {
	l *zap.Logger
}

func (z *zapErrorLogger) Error(msg string, fields map[string]interface{}) {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	z.l.Error(msg, zapFields...)
}
