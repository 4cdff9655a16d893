// cmd/worker-manager/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"carfind-workers/internal/common/aws"
	"carfind-workers/internal/common/camunda"
	"carfind-workers/internal/common/config"
	"carfind-workers/internal/common/database"
	"carfind-workers/internal/common/logger"
	"carfind-workers/internal/common/observability"
	"carfind-workers/internal/common/recordstore"
	"carfind-workers/internal/common/whatsapp"

	// Webhook Intake Workers (2)
	dm "carfind-workers/internal/workers/infrastructure/dedupe-message"
	vp "carfind-workers/internal/workers/infrastructure/validate-payload"

	// Conversation Workers (2)
	cm "carfind-workers/internal/workers/conversation/classify-message"
	gr "carfind-workers/internal/workers/conversation/generate-response"

	// Search Workers (1 parser + 3 data access)
	qa "carfind-workers/internal/workers/data-access/query-analytics"
	ql "carfind-workers/internal/workers/data-access/query-listings"
	qle "carfind-workers/internal/workers/data-access/query-listings-elasticsearch"
	psq "carfind-workers/internal/workers/listings/parse-search-query"

	// User Workers (1)
	uu "carfind-workers/internal/workers/users/upsert-user"

	// Communication Workers (3)
	lm "carfind-workers/internal/workers/communication/log-message"
	soa "carfind-workers/internal/workers/communication/send-ops-alert"
	swm "carfind-workers/internal/workers/communication/send-whatsapp-message"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init Record Store with retry ---
	store := recordstore.NewClient(cfg.RecordStore)
	err = retryWithBackoff(func() error {
		return store.Authenticate(ctx)
	}, 10, 2*time.Second, zapLog, "record store authentication")

	if err != nil {
		zapLog.Fatal("record store failed after retries", zap.Error(err))
	}
	zapLog.Info("Record store authenticated successfully")

	// --- Init WhatsApp Client ---
	wa := whatsapp.NewClient(cfg.WhatsApp)

	// --- Init Redis with retry (optional) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			// Test the connection with context
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init PostgreSQL with retry (optional) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Host != "" {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.EnsureArchiveSchema(ctx); err != nil {
			zapLog.Fatal("archive schema setup failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry (optional) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.GetURL() != "" {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init AWS Clients (optional) ---
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient
	if cfg.Integrations.AWS.Region != "" {
		if cfg.Integrations.AWS.SES.Enabled {
			sesClient, err = aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("ses client failed", zap.Error(err))
			}
		}
		if cfg.Integrations.AWS.SNS.Enabled {
			snsClient, err = aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
		}
		zapLog.Info("AWS clients initialized")
	}

	var workers []*camunda.CamundaWorker
	addWorker := func(w *camunda.CamundaWorker) {
		if w != nil {
			workers = append(workers, w)
		}
	}

	// --- START: Register Workers ---

	// --- 1. Webhook Intake Workers (2) ---
	if cfg.Workers[vp.TaskType].Enabled {
		handler := vp.NewHandler(
			&vp.Config{
				Timeout: config.GetDuration(cfg.Workers[vp.TaskType].Timeout),
			},
			&validatePayloadLoggerAdapter{log},
		)
		addWorker(startWorker(zeebe, vp.TaskType, cfg.Workers[vp.TaskType], handler, obs, zapLog))
	}

	if cfg.Workers[dm.TaskType].Enabled {
		if redis == nil {
			zapLog.Warn("worker skipped, redis not configured", zap.String("taskType", dm.TaskType))
		} else {
			handler := dm.NewHandler(
				&dm.Config{
					Timeout: config.GetDuration(cfg.Workers[dm.TaskType].Timeout),
					TTL:     24 * time.Hour,
				},
				redis,
				&dedupeMessageLoggerAdapter{log},
			)
			addWorker(startWorker(zeebe, dm.TaskType, cfg.Workers[dm.TaskType], handler, obs, zapLog))
		}
	}

	// --- 2. Conversation Workers (2) ---
	if cfg.Workers[cm.TaskType].Enabled {
		handler := cm.NewHandler(
			&cm.Config{
				Timeout: config.GetDuration(cfg.Workers[cm.TaskType].Timeout),
			},
			&classifyMessageLoggerAdapter{log},
		)
		addWorker(startWorker(zeebe, cm.TaskType, cfg.Workers[cm.TaskType], handler, obs, zapLog))
	}

	if cfg.Workers[gr.TaskType].Enabled {
		if redis == nil {
			zapLog.Warn("worker skipped, redis not configured", zap.String("taskType", gr.TaskType))
		} else {
			handler := gr.NewHandler(
				&gr.Config{
					Timeout:           config.GetDuration(cfg.Workers[gr.TaskType].Timeout),
					Brands:            cfg.Search.Brands,
					PerPage:           cfg.Search.PerPage,
					Sort:              cfg.Search.Sort,
					LockTTL:           30 * time.Second,
					LockWait:          5 * time.Second,
					LockRetryInterval: 100 * time.Millisecond,
				},
				store, redis,
				&generateResponseLoggerAdapter{log},
			)
			addWorker(startWorker(zeebe, gr.TaskType, cfg.Workers[gr.TaskType], handler, obs, zapLog))
		}
	}

	// --- 3. Search Workers (1 parser + 3 data access) ---
	if cfg.Workers[psq.TaskType].Enabled {
		handler := psq.NewHandler(
			&psq.Config{
				Timeout: config.GetDuration(cfg.Workers[psq.TaskType].Timeout),
				Brands:  cfg.Search.Brands,
			},
			&parseSearchQueryLoggerAdapter{log},
		)
		addWorker(startWorker(zeebe, psq.TaskType, cfg.Workers[psq.TaskType], handler, obs, zapLog))
	}

	if cfg.Workers[ql.TaskType].Enabled {
		handler := ql.NewHandler(
			&ql.Config{
				Timeout:        config.GetDuration(cfg.Workers[ql.TaskType].Timeout),
				DefaultSort:    cfg.Search.Sort,
				DefaultPerPage: cfg.Search.PerPage,
				MaxPerPage:     50,
			},
			store,
			&queryListingsLoggerAdapter{log},
		)
		addWorker(startWorker(zeebe, ql.TaskType, cfg.Workers[ql.TaskType], handler, obs, zapLog))
	}

	if cfg.Workers[qle.TaskType].Enabled {
		if esClient == nil {
			zapLog.Warn("worker skipped, elasticsearch not configured", zap.String("taskType", qle.TaskType))
		} else {
			handler := qle.NewHandler(
				&qle.Config{
					Timeout:        config.GetDuration(cfg.Workers[qle.TaskType].Timeout),
					Index:          cfg.Database.Elasticsearch.Index,
					DefaultPerPage: cfg.Search.PerPage,
					MaxPerPage:     50,
				},
				esClient.Client, log,
			)
			addWorker(startWorker(zeebe, qle.TaskType, cfg.Workers[qle.TaskType], handler, obs, zapLog))
		}
	}

	if cfg.Workers[qa.TaskType].Enabled {
		if pg == nil {
			zapLog.Warn("worker skipped, postgres not configured", zap.String("taskType", qa.TaskType))
		} else {
			handler := qa.NewHandler(
				&qa.Config{
					Timeout: config.GetDuration(cfg.Workers[qa.TaskType].Timeout),
				},
				pg.DB, log,
			)
			addWorker(startWorker(zeebe, qa.TaskType, cfg.Workers[qa.TaskType], handler, obs, zapLog))
		}
	}

	// --- 4. User Workers (1) ---
	if cfg.Workers[uu.TaskType].Enabled {
		handler := uu.NewHandler(
			&uu.Config{
				Timeout: config.GetDuration(cfg.Workers[uu.TaskType].Timeout),
			},
			store,
			&upsertUserLoggerAdapter{log},
		)
		addWorker(startWorker(zeebe, uu.TaskType, cfg.Workers[uu.TaskType], handler, obs, zapLog))
	}

	// --- 5. Communication Workers (3) ---
	if cfg.Workers[lm.TaskType].Enabled {
		// The Postgres archive leg is optional; the worker logs to the
		// record store alone when no archive database is configured.
		var archive *sql.DB
		if pg != nil {
			archive = pg.DB
		}
		handler := lm.NewHandler(
			&lm.Config{
				Timeout: config.GetDuration(cfg.Workers[lm.TaskType].Timeout),
			},
			store, archive,
			&logMessageLoggerAdapter{log},
		)
		addWorker(startWorker(zeebe, lm.TaskType, cfg.Workers[lm.TaskType], handler, obs, zapLog))
	}

	if cfg.Workers[swm.TaskType].Enabled {
		handler, err := swm.NewHandler(swm.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
			Channel:   wa,
		})
		if err != nil {
			zapLog.Fatal("failed to create send-whatsapp-message handler", zap.Error(err))
		}
		addWorker(startWorker(zeebe, swm.TaskType, cfg.Workers[swm.TaskType], handler, obs, zapLog))
	}

	if cfg.Workers[soa.TaskType].Enabled {
		opts := soa.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
		}
		// Assign only non-nil clients so the handler's nil checks see a
		// genuinely absent sender rather than a typed nil.
		if sesClient != nil {
			opts.Email = sesClient
		}
		if snsClient != nil {
			opts.SMS = snsClient
		}
		handler, err := soa.NewHandler(opts)
		if err != nil {
			zapLog.Fatal("failed to create send-ops-alert handler", zap.Error(err))
		}
		addWorker(startWorker(zeebe, soa.TaskType, cfg.Workers[soa.TaskType], handler, obs, zapLog))
	}

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// Logger adapters for workers that declare their own Logger interfaces
type validatePayloadLoggerAdapter struct {
	logger.Logger
}

func (a *validatePayloadLoggerAdapter) With(fields map[string]interface{}) vp.Logger {
	return &validatePayloadLoggerAdapter{a.Logger.With(fields)}
}

type dedupeMessageLoggerAdapter struct {
	logger.Logger
}

func (a *dedupeMessageLoggerAdapter) With(fields map[string]interface{}) dm.Logger {
	return &dedupeMessageLoggerAdapter{a.Logger.With(fields)}
}

type classifyMessageLoggerAdapter struct {
	logger.Logger
}

func (a *classifyMessageLoggerAdapter) With(fields map[string]interface{}) cm.Logger {
	return &classifyMessageLoggerAdapter{a.Logger.With(fields)}
}

type generateResponseLoggerAdapter struct {
	logger.Logger
}

func (a *generateResponseLoggerAdapter) With(fields map[string]interface{}) gr.Logger {
	return &generateResponseLoggerAdapter{a.Logger.With(fields)}
}

type parseSearchQueryLoggerAdapter struct {
	logger.Logger
}

func (a *parseSearchQueryLoggerAdapter) With(fields map[string]interface{}) psq.Logger {
	return &parseSearchQueryLoggerAdapter{a.Logger.With(fields)}
}

type queryListingsLoggerAdapter struct {
	logger.Logger
}

func (a *queryListingsLoggerAdapter) With(fields map[string]interface{}) ql.Logger {
	return &queryListingsLoggerAdapter{a.Logger.With(fields)}
}

type upsertUserLoggerAdapter struct {
	logger.Logger
}

func (a *upsertUserLoggerAdapter) With(fields map[string]interface{}) uu.Logger {
	return &upsertUserLoggerAdapter{a.Logger.With(fields)}
}

type logMessageLoggerAdapter struct {
	logger.Logger
}

func (a *logMessageLoggerAdapter) With(fields map[string]interface{}) lm.Logger {
	return &logMessageLoggerAdapter{a.Logger.With(fields)}
}

// instrumentedHandler traces and counts every job a worker handles. The
// per-worker Prometheus counters carry success/failure; this layer only
// sees that the handler returned.
type instrumentedHandler struct {
	taskType string
	inner    camunda.JobHandler
	obs      *observability.Observability
}

func (h *instrumentedHandler) Handle(client worker.JobClient, job entities.Job) {
	ctx, span := h.obs.StartSpan(context.Background(), "job "+h.taskType)
	start := time.Now()

	h.inner.Handle(client, job)

	h.obs.RecordJobDuration(ctx, time.Since(start), h.taskType)
	h.obs.RecordJobProcessed(ctx, h.taskType)
	span.End()
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, obs *observability.Observability, log *zap.Logger) *camunda.CamundaWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.NewWorker(
		client.GetClient(),
		taskType,
		wcfg.MaxJobsActive,
		config.GetDuration(wcfg.Timeout),
		&instrumentedHandler{taskType: taskType, inner: handler, obs: obs},
		log,
	)
}
