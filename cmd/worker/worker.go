package main

import (
	"context"
	"log"
	"time"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/config"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/internal/queue"
	"rag-docqa-platform/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// AI provider
	provider, err := ai.NewProvider(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize AI provider:", err)
	}

	documentStore := services.NewMongoDocumentStore(db)
	chunkStore := services.NewMongoChunkStore(db)
	chunker := services.NewChunker(cfg.ChunkSize)
	ingester := services.NewIngestionService(chunker, provider, chunkStore, documentStore, cfg.AllowedTypes)

	// Create Asynq server
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(documentStore, ingester)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestDocument, processor.HandleIngestDocument)

	logger.Info("Worker starting")
	if err := server.Run(mux); err != nil {
		log.Fatal("Worker stopped:", err)
	}
}
