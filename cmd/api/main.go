package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/northlink/support-ai-platform/cmd/mainconfig"
	"github.com/northlink/support-ai-platform/internal/ai"
	"github.com/northlink/support-ai-platform/internal/api/router"
	"github.com/northlink/support-ai-platform/internal/approval"
	"github.com/northlink/support-ai-platform/internal/complaints"
	appconfig "github.com/northlink/support-ai-platform/internal/config"
	"github.com/northlink/support-ai-platform/internal/events"
	"github.com/northlink/support-ai-platform/internal/observability/metrics"
	"github.com/northlink/support-ai-platform/internal/triage"
	"github.com/northlink/support-ai-platform/pkg/logging"
)

func main() {
	// Load .env in development; ignore when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting support-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"ai_backend", cfg.AIBackend,
	)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// AI adapter. Both backends sit behind the same LLMClient interface
	// with a shared timeout wrapper.
	var llmClient ai.LLMClient
	modelID := cfg.BedrockModelID
	switch cfg.AIBackend {
	case "gemini":
		geminiClient, err := ai.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to init Gemini client", "error", err)
			os.Exit(1)
		}
		defer geminiClient.Close()
		llmClient = geminiClient
		modelID = cfg.GeminiModelID
	default:
		llmClient = ai.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}
	adapter := ai.NewAdapter(
		ai.NewTimeoutClient(llmClient, cfg.AdapterTimeout),
		modelID,
		int32(cfg.AdapterMaxTokens),
		logger,
	)

	// Complaint storage: Postgres when configured, in-memory otherwise.
	var complaintRepo complaints.Repository = complaints.NewInMemoryRepository()
	var decisionLog approval.DecisionLog = approval.NewInMemoryDecisionLog()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		complaintRepo = complaints.NewPostgresRepository(pool)

		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open decision log db", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		decisionLog = approval.NewSQLDecisionLog(db)
	}

	// Draft storage: Redis when configured so drafts survive restarts
	// and expire on their own.
	var draftStore approval.DraftStore = approval.NewInMemoryDraftStore()
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		draftStore = approval.NewRedisDraftStore(redisClient, cfg.DraftTTL)
	}

	var publisher *events.Publisher
	if cfg.ComplaintQueueURL != "" {
		publisher = events.NewPublisher(sqs.NewFromConfig(awsCfg), cfg.ComplaintQueueURL, logger)
	}

	engine := triage.NewEngine(adapter, workflowMetrics, logger)
	gate := approval.NewGate(adapter, draftStore, decisionLog, complaintRepo, cfg.ReviewThreshold, workflowMetrics, logger)

	routerCfg := &router.Config{
		Logger:            logger,
		TriageHandler:     triage.NewHandler(engine, complaintRepo, publisher, logger),
		ComplaintsHandler: complaints.NewHandler(complaintRepo, logger),
		ApprovalHandler:   approval.NewHandler(gate, complaintRepo, decisionLog, logger),
		MetricsHandler:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AgentJWTSecret:    cfg.AgentJWTSecret,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
