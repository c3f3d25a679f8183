// cmd/worker-manager/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"nexsupply-workers/internal/api"
	"nexsupply-workers/internal/common/aws"
	"nexsupply-workers/internal/common/camunda"
	"nexsupply-workers/internal/common/config"
	"nexsupply-workers/internal/common/database"
	"nexsupply-workers/internal/common/genai"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/observability"
	"nexsupply-workers/internal/common/usage"
	"nexsupply-workers/internal/pipeline"

	// Intake Workers (2)
	cuq "nexsupply-workers/internal/workers/intake/check-usage-quota"
	vls "nexsupply-workers/internal/workers/intake/validate-lead-submission"

	// Intelligence Workers (3)
	al "nexsupply-workers/internal/workers/intelligence/analyze-lead"
	alg "nexsupply-workers/internal/workers/intelligence/apply-lead-guardrails"
	dlr "nexsupply-workers/internal/workers/intelligence/derive-lead-routing"

	// Delivery Workers (4)
	blr "nexsupply-workers/internal/workers/delivery/build-lead-response"
	clr "nexsupply-workers/internal/workers/delivery/create-lead-record"
	ili "nexsupply-workers/internal/workers/delivery/index-lead-intel"
	sln "nexsupply-workers/internal/workers/delivery/send-lead-notifications"
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
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
	})
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureLeadsTable(ctx); err != nil {
		zapLog.Fatal("leads table migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.LeadIndex, ili.IndexMapping); err != nil {
		zapLog.Fatal("lead index setup failed", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	redisClient := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init usage limiter and event log ---
	store := usage.NewRedisStore(redisClient.Store())
	limiter, err := usage.NewLimiter(store, cfg.Usage)
	if err != nil {
		zapLog.Fatal("usage limiter setup failed", zap.Error(err))
	}
	events := usage.NewEventLog(store, cfg.Usage.MaxEventsPerIdentity)

	// --- Init GenAI ---
	// analyzer stays a nil interface without a key so analyze-lead falls back.
	var analyzer genai.Analyzer
	generator, err := genai.NewGeminiGenerator(ctx, cfg.GenAI)
	switch {
	case err == nil:
		analyzer = genai.NewLeadAnalyzer(generator, genai.Timeout(cfg.GenAI), log)
		zapLog.Info("GenAI client initialized", zap.String("model", generator.Model()))
	case stderrors.Is(err, genai.ErrNotConfigured):
		zapLog.Warn("GEMINI_API_KEY not set, every lead will use the fallback analysis")
	default:
		zapLog.Fatal("genai client failed", zap.Error(err))
	}

	// --- Init AWS notification clients ---
	var mailer *aws.Mailer
	var publisher *aws.Publisher
	if cfg.Notifications.SESEnabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		mailer = aws.NewMailer(sesClient)
	}
	if cfg.Notifications.SNSTopicARN != "" {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher = aws.NewPublisher(snsClient)
	}
	zapLog.Info("All external service clients initialized")

	// --- Build handlers ---
	quotaCfg := cuq.LoadConfig()
	quotaCfg.Timeout = workerTimeout(cfg, cuq.TaskType, quotaCfg.Timeout)

	validateCfg := vls.LoadConfig()
	validateCfg.Timeout = workerTimeout(cfg, vls.TaskType, validateCfg.Timeout)

	analyzeCfg := al.LoadConfig()
	analyzeCfg.Timeout = workerTimeout(cfg, al.TaskType, analyzeCfg.Timeout)

	guardCfg := alg.LoadConfig()
	guardCfg.Timeout = workerTimeout(cfg, alg.TaskType, guardCfg.Timeout)

	routeCfg := dlr.LoadConfig()
	routeCfg.Timeout = workerTimeout(cfg, dlr.TaskType, routeCfg.Timeout)

	recordCfg := clr.LoadConfig()
	recordCfg.Timeout = workerTimeout(cfg, clr.TaskType, recordCfg.Timeout)

	indexCfg := ili.LoadConfig()
	indexCfg.IndexName = cfg.Database.Elasticsearch.LeadIndex
	indexCfg.Timeout = workerTimeout(cfg, ili.TaskType, indexCfg.Timeout)

	notifyCfg := sln.LoadConfig().FromSettings(cfg.Notifications)
	notifyCfg.Timeout = workerTimeout(cfg, sln.TaskType, notifyCfg.Timeout)

	respondCfg := blr.LoadConfig()
	respondCfg.Timeout = workerTimeout(cfg, blr.TaskType, respondCfg.Timeout)

	stages := pipeline.Stages{
		Quota:     cuq.NewHandler(quotaCfg, limiter, events, log),
		Validate:  vls.NewHandler(validateCfg, log),
		Analyze:   al.NewHandler(analyzeCfg, analyzer, log),
		Guard:     alg.NewHandler(guardCfg, log),
		Route:     dlr.NewHandler(routeCfg, log),
		Record:    clr.NewHandler(recordCfg, pg.DB, log),
		Index:     ili.NewHandler(indexCfg, esClient.Client, log),
		Notify:    sln.NewHandler(notifyCfg, mailer, publisher, log),
		Respond:   blr.NewHandler(respondCfg, log),
		Limiter:   limiter,
		EventLog:  events,
		Telemetry: obs,
	}

	// --- Register Zeebe workers ---
	var pool *camunda.Pool
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		}, zapLog)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		pool = camunda.NewPool(zeebe.GetClient(), zapLog)
		registerWorkers(pool, cfg, stages)
		zapLog.Info("Workers registered", zap.Strings("taskTypes", pool.TaskTypes()))
	} else {
		zapLog.Info("Camunda disabled, serving the HTTP pipeline only")
	}

	// --- HTTP API, Health & Metrics Server ---
	service := pipeline.NewService(stages, log)
	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewServer(api.Options{
			Service:      service,
			Logger:       log,
			Telemetry:    obs,
			AIConfigured: analyzer != nil,
			Redis:        redisClient,
			Version:      cfg.App.Version,
		}).Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	service.Wait()

	if pool != nil {
		pool.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// registerWorkers opens one job worker per enabled task type.
func registerWorkers(pool *camunda.Pool, cfg *config.Config, s pipeline.Stages) {
	handlers := []struct {
		taskType string
		handle   worker.JobHandler
	}{
		{cuq.TaskType, s.Quota.Handle},
		{vls.TaskType, s.Validate.Handle},
		{al.TaskType, s.Analyze.Handle},
		{alg.TaskType, s.Guard.Handle},
		{dlr.TaskType, s.Route.Handle},
		{clr.TaskType, s.Record.Handle},
		{ili.TaskType, s.Index.Handle},
		{sln.TaskType, s.Notify.Handle},
		{blr.TaskType, s.Respond.Handle},
	}
	for _, h := range handlers {
		wcfg := config.GetWorkerConfig(cfg, h.taskType)
		wcfg.Enabled = config.IsWorkerEnabled(cfg, h.taskType)
		pool.Start(h.taskType, wcfg, h.handle)
	}
}

// workerTimeout prefers the configured per-worker timeout.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if wcfg, ok := cfg.Workers[taskType]; ok && wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	return fallback
}
