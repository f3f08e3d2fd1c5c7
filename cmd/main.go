package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/harini-sv/sheetcheck/internal/api"
	"github.com/harini-sv/sheetcheck/internal/config"
	"github.com/harini-sv/sheetcheck/internal/configs/env"
	"github.com/harini-sv/sheetcheck/internal/evaluator"
	"github.com/harini-sv/sheetcheck/internal/evaluator/llm"
	mongoInfra "github.com/harini-sv/sheetcheck/internal/infra/mongo"
	redisInfra "github.com/harini-sv/sheetcheck/internal/infra/redis"
	"github.com/harini-sv/sheetcheck/internal/interview"
	"github.com/harini-sv/sheetcheck/internal/logger"
	"github.com/harini-sv/sheetcheck/internal/metrics"
	"github.com/harini-sv/sheetcheck/internal/questions"
	"github.com/harini-sv/sheetcheck/internal/repository"
	"github.com/harini-sv/sheetcheck/internal/stream"
	"github.com/harini-sv/sheetcheck/internal/workbook"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Bool("mockMode", cfg.MockMode).Msg("Starting sheetcheck server")

	// Initialize Prometheus metrics
	metrics.InitPrometheus()

	// Start metrics server in separate goroutine on port 2112
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    ":2112",
		Handler: metricsMux,
	}
	go func() {
		log.Info().Str("port", "2112").Msg("Metrics server started")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Metrics server failed to start")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongoInfra.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(ctx)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	// Initialize repositories
	mongoRepo := repository.NewMongoRepository(mongoClient)
	sessionsRepo := repository.NewSessionsRepository(mongoRepo)
	evaluationsRepo := repository.NewEvaluationsRepository(mongoRepo)

	// Question bank
	bank, err := questions.NewBank(cfg.QuestionBankPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question bank")
	}

	// Evaluation pipeline
	deterministic := evaluator.NewDeterministic(workbook.NewXLSXOpener())
	var llmClient *llm.Client
	if !cfg.MockMode {
		llmClient = llm.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.LLMTimeout)
	}
	rubric := llm.NewEvaluator(llmClient, cfg.MockMode)
	pipeline := evaluator.NewPipeline(
		deterministic,
		rubric,
		evaluator.Weights{Deterministic: cfg.DeterministicWeight, LLM: cfg.LLMWeight},
		evaluator.Thresholds{Pass: cfg.PassThreshold, FlagConfidence: cfg.FlagConfidenceThreshold},
	)

	// Job queue
	jobStatus := stream.NewStatusStore(redisClient.Client)
	producer := stream.NewProducer(redisClient.Client, cfg.RedisStreamKey, jobStatus)
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	// Interview service
	interviewSvc := interview.NewService(
		sessionsRepo,
		evaluationsRepo,
		bank,
		pipeline,
		producer,
		cfg.MaxQuestions,
		cfg.DefaultTimeLimitSecs,
	)

	// Initialize worker pool
	workerPool := evaluator.NewWorkerPool(ctx)
	defer workerPool.Close()

	// Initialize Redis stream consumer
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		interviewSvc,
		workerPool,
		retryHandler,
		jobStatus,
		cfg.StreamRetentionDuration,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	router := api.SetupRoutes(cfg, interviewSvc, jobStatus)

	// Start Redis consumer in background
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	go func() {
		defer consumerCancel()
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	// Start Gin server
	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	metricsCtx, metricsCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer metricsCancel()
	if err := metricsServer.Shutdown(metricsCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
