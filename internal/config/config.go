// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	// Relational store. "postgres://" URLs use the postgres driver, anything
	// else is treated as a SQLite file path.
	DatabaseURL string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ConversationTTL time.Duration

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	ChatModel          string
	EmbeddingModelName string
	Temperature        float32
	MaxTokens          int

	QdrantHost      string
	QdrantPort      int
	QdrantAPIKey    string
	QdrantUseTLS    bool
	CollectionName  string
	VectorDimension int
	RetrievalTopK   int
	BatchPoints     int

	CohereAPIKey        string
	RerankModel         string
	RerankTopN          int
	ConfidenceThreshold float64

	TavilyAPIKey     string
	TavilyMaxResults int

	ChunkSize         int
	ChunkOverlap      int
	WindowSize        int
	TokenizerEncoding string

	TaskQueue         string
	WorkerConcurrency int
	TaskRetention     time.Duration
	TaskPollTimeout   time.Duration
	TaskPollInterval  time.Duration
	WorkerMetricsAddr string

	AdminJWTSecret string
	ChatRateLimit  int
	ChatRateWindow time.Duration
	CORSOrigins    []string

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8000"),
		Environment: env,

		DatabaseURL: getEnv("DATABASE_URL", "meddy.db"),

		RedisAddr:       getEnv("REDIS_ADDR", redisAddrFromParts()),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		ConversationTTL: getEnvAsDuration("CONVERSATION_TTL", 360*time.Second),

		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		ChatModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModelName: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		Temperature:        float32(getEnvAsFloat("TEMPERATURE", 0.7)),
		MaxTokens:          getEnvAsInt("MAX_TOKENS", 2048),

		QdrantHost:      getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:      getEnvAsInt("QDRANT_PORT", 6334),
		QdrantAPIKey:    getEnv("QDRANT_API_KEY", ""),
		QdrantUseTLS:    getEnvAsBool("QDRANT_USE_TLS", false),
		CollectionName:  getEnv("DEFAULT_COLLECTION_NAME", "documents"),
		VectorDimension: getEnvAsInt("VECTOR_DIMENSION", 1536),
		RetrievalTopK:   getEnvAsInt("TOP_K", 5),
		BatchPoints:     getEnvAsInt("BATCH_POINTS", 100),

		CohereAPIKey:        getEnv("COHERE_API_KEY", ""),
		RerankModel:         getEnv("COHERE_RERANK_MODEL", "rerank-multilingual-v3.0"),
		RerankTopN:          getEnvAsInt("RERANK_TOP_N", 3),
		ConfidenceThreshold: getEnvAsFloat("RAG_CONFIDENCE_THRESHOLD", 0.5),

		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		TavilyMaxResults: getEnvAsInt("TAVILY_MAX_RESULTS", 3),

		ChunkSize:    getEnvAsInt("CHUNK_SIZE", 512),
		ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 50),
		WindowSize:   getEnvAsInt("WINDOW_SIZE", 3),

		TokenizerEncoding: getEnv("TOKENIZER_ENCODING", "cl100k_base"),

		TaskQueue:         getEnv("TASK_QUEUE", "default"),
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 2),
		TaskRetention:     getEnvAsDuration("TASK_RESULT_RETENTION", time.Hour),
		TaskPollTimeout:   getEnvAsDuration("TASK_POLL_TIMEOUT", 60*time.Second),
		TaskPollInterval:  getEnvAsDuration("TASK_POLL_INTERVAL", 500*time.Millisecond),
		WorkerMetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		ChatRateLimit:  getEnvAsInt("CHAT_RATE_LIMIT", 30),
		ChatRateWindow: getEnvAsDuration("CHAT_RATE_WINDOW", time.Minute),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogFile:  getEnv("LOG_FILE", "logs/app.log"),
	}
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// Validate checks the keys every process needs. In production it also
// requires the hosted API credentials.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("TOP_K must be positive")
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("RAG_CONFIDENCE_THRESHOLD must be between 0 and 1")
	}

	if !c.IsProduction() {
		return nil
	}

	missing := []string{}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.CohereAPIKey == "" {
		missing = append(missing, "COHERE_API_KEY")
	}
	if c.TavilyAPIKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}
	if c.AdminJWTSecret == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required production environment variables: %v", missing)
	}
	return nil
}

func redisAddrFromParts() string {
	host := getEnv("REDIS_HOST", "valkey_db")
	port := getEnv("REDIS_PORT", "6379")
	return host + ":" + port
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as float. Using default value.", key)
		return defaultValue
	}
	return f
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsDuration accepts Go duration strings ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
