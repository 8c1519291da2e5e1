package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Agent-Analytics/agent-analytics-core/internal/analytics"
	"github.com/Agent-Analytics/agent-analytics-core/internal/config"
	"github.com/Agent-Analytics/agent-analytics-core/internal/handler"
	"github.com/Agent-Analytics/agent-analytics-core/internal/ingest"
	"github.com/Agent-Analytics/agent-analytics-core/internal/logger"
	"github.com/Agent-Analytics/agent-analytics-core/internal/queue"
	"github.com/Agent-Analytics/agent-analytics-core/internal/queue/sqs"
	"github.com/Agent-Analytics/agent-analytics-core/internal/storage/sqlite"
)

// @title Agent Analytics Core API
// @version 1.0
// @description API for ingesting behavioral events and querying aggregate analytics
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		if err := log.Sync(); err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort),
		zap.String("ingest_mode", cfg.Service.IngestMode))

	ctx := context.Background()

	client, err := sqlite.NewClient(&cfg.SQLite, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}

	store := sqlite.NewStore(client, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	if err := store.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	ingestService := ingest.NewService(store, log)
	analyticsService := analytics.NewService(store, log)

	// The queued mode publishes to SQS and leaves the write to the
	// consumer; direct mode writes synchronously.
	var ingestor ingest.Ingestor = ingestService
	if cfg.Service.IngestMode == "queue" {
		sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
		if err != nil {
			log.Fatal("Failed to create SQS client", zap.Error(err))
		}
		ingestor = queue.NewPublisher(sqsClient, log)
	}

	h := handler.NewHandler(ingestor, analyticsService, ingestService, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
