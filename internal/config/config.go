package config

import (
	"fmt"
	"time"

	"github.com/harini-sv/sheetcheck/internal/configs/env"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// LLM scoring service
	GroqBaseURL string
	GroqAPIKey  string
	GroqModel   string
	LLMTimeout  time.Duration
	MockMode    bool

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Evaluation
	DeterministicWeight     float64
	LLMWeight               float64
	PassThreshold           float64
	FlagConfidenceThreshold float64

	// Interview
	MaxQuestions         int
	DefaultTimeLimitSecs int
	QuestionBankPath     string

	// File uploads
	UploadDir   string
	MaxFileSize int64

	// Logging
	LogLevel string

	// Server
	ServerPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "evaluation:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "evaluation:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "evaluation:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// LLM scoring service
	cfg.GroqBaseURL = env.GetEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	cfg.GroqAPIKey = env.GetEnv("GROQ_API_KEY", "")
	cfg.GroqModel = env.GetEnv("GROQ_MODEL", "mixtral-8x7b-32768")
	timeoutSeconds := env.GetEnvInt("LLM_TIMEOUT_SECONDS", 30)
	cfg.LLMTimeout = time.Duration(timeoutSeconds) * time.Second
	cfg.MockMode = env.GetEnvBool("MOCK_MODE", false)
	if cfg.GroqAPIKey == "" {
		// No credential means the live LLM path must never be attempted
		cfg.MockMode = true
	}

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "sheetcheck")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Evaluation
	cfg.DeterministicWeight = env.GetEnvFloat("DETERMINISTIC_WEIGHT", 0.6)
	cfg.LLMWeight = env.GetEnvFloat("LLM_WEIGHT", 0.4)
	cfg.PassThreshold = env.GetEnvFloat("PASS_THRESHOLD", 2.5)
	cfg.FlagConfidenceThreshold = env.GetEnvFloat("FLAG_CONFIDENCE_THRESHOLD", 0.45)

	// Interview
	cfg.MaxQuestions = env.GetEnvInt("MAX_QUESTIONS", 6)
	cfg.DefaultTimeLimitSecs = env.GetEnvInt("DEFAULT_TIME_LIMIT_SECONDS", 300)
	cfg.QuestionBankPath = env.GetEnv("QUESTION_BANK_PATH", "")

	// File uploads
	cfg.UploadDir = env.GetEnv("UPLOAD_DIR", "uploads")
	cfg.MaxFileSize = int64(env.GetEnvInt("MAX_FILE_SIZE_BYTES", 10*1024*1024))

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DeterministicWeight < 0 || c.LLMWeight < 0 {
		return fmt.Errorf("evaluation weights must be non-negative")
	}
	if c.PassThreshold < 0 || c.PassThreshold > 4 {
		return fmt.Errorf("PASS_THRESHOLD must be within [0, 4]")
	}
	if c.FlagConfidenceThreshold < 0 || c.FlagConfidenceThreshold > 1 {
		return fmt.Errorf("FLAG_CONFIDENCE_THRESHOLD must be within [0, 1]")
	}
	if c.MaxQuestions <= 0 {
		return fmt.Errorf("MAX_QUESTIONS must be greater than 0")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_BYTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	return nil
}
