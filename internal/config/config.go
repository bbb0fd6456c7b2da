package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins []string

	// Auth (token issuing lives outside this service; we only validate)
	JWTSecret string

	// Redis (rate limiting + task queue)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// AI provider selection: "gateway" (default, OpenAI-compatible) or "google"
	AIProvider string

	// OpenAI-compatible gateway
	AIGatewayURL    string
	AIGatewayAPIKey string
	EmbeddingModel  string
	ChatModel       string

	// Google Generative AI
	GeminiAPIKey         string
	GeminiEmbeddingModel string
	GeminiChatModel      string

	// Retrieval tuning
	ChunkSize        int
	MatchThreshold   float64
	MatchCount       int
	Temperature      float64
	VectorDimensions int

	// Provider call deadline, seconds
	ProviderTimeout int

	// Ingestion limits
	MaxDocumentSize int64
	AllowedTypes    []string

	// Orphan chunk sweeper
	SweepIntervalMin int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/rag_docqa"),
		DBName:      getEnv("DB_NAME", "rag_docqa"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "*"), ","),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		AIProvider: getEnv("AI_PROVIDER", "gateway"),

		AIGatewayURL:    getEnv("AI_GATEWAY_URL", "https://api.openai.com/v1"),
		AIGatewayAPIKey: getEnv("AI_GATEWAY_API_KEY", ""),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		ChatModel:       getEnv("CHAT_MODEL", "gpt-4o-mini"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		GeminiChatModel:      getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),

		ChunkSize:        getEnvInt("CHUNK_SIZE", 500),
		MatchThreshold:   getEnvFloat64("MATCH_THRESHOLD", 0.7),
		MatchCount:       getEnvInt("MATCH_COUNT", 5),
		Temperature:      getEnvFloat64("TEMPERATURE", 0.7),
		VectorDimensions: getEnvInt("VECTOR_DIM", 1536),

		ProviderTimeout: getEnvInt("PROVIDER_TIMEOUT", 30),

		MaxDocumentSize: getEnvInt64("MAX_DOCUMENT_SIZE", 10485760), // 10MB
		AllowedTypes:    strings.Split(getEnv("ALLOWED_TYPES", "text/plain,text/html,application/pdf"), ","),

		SweepIntervalMin: getEnvInt("SWEEP_INTERVAL_MINUTES", 15),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	switch cfg.AIProvider {
	case "gateway":
		if cfg.AIGatewayAPIKey == "" {
			return nil, fmt.Errorf("AI_GATEWAY_API_KEY is required - set it in .env file")
		}
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
		}
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
