package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rag-docqa-platform/internal/ai"
	"rag-docqa-platform/internal/config"
	"rag-docqa-platform/internal/logger"
	"rag-docqa-platform/internal/telemetry"
	"rag-docqa-platform/middleware"
	"rag-docqa-platform/routes"
	"rag-docqa-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
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

	// Connect to Redis (rate limiting + task queue)
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer("rag-docqa-platform")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
	}

	// AI provider
	provider, err := ai.NewProvider(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize AI provider:", err)
	}

	// Core services
	documentStore := services.NewMongoDocumentStore(db)
	chunkStore := services.NewMongoChunkStore(db)
	chunker := services.NewChunker(cfg.ChunkSize)
	ingester := services.NewIngestionService(chunker, provider, chunkStore, documentStore, cfg.AllowedTypes)
	querySvc := services.NewQueryService(provider, provider, chunkStore, cfg.MatchThreshold, cfg.MatchCount)

	// Background sweep of partial indexes left by failed ingestions
	sweeper := services.NewSweeper(documentStore, chunkStore, time.Duration(cfg.SweepIntervalMin)*time.Minute)
	sweeper.Start()
	defer sweeper.Stop()

	// Task queue client for async ingestion
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("rag-docqa-platform"))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	authMiddleware := middleware.NewAuthMiddleware(cfg)

	// Setup routes
	routes.SetupDocumentRoutes(router, cfg, documentStore, ingester, queueClient, metrics, authMiddleware)
	routes.SetupQueryRoutes(router, querySvc, metrics, authMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
