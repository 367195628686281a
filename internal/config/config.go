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
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	AI        AIConfig
	Storage   StorageConfig
	Interview InterviewConfig
	Jobs      JobsConfig
	Worker    WorkerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// AIConfig selects the language model backend. An empty key for the selected
// provider disables AI and every caller falls back to its heuristic path.
type AIConfig struct {
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	EmbeddingModel    string
	DeepSeekAPIKey    string
	DeepSeekBaseURL   string
	DeepSeekModel     string
	Timeout           time.Duration
	TranscribeTimeout time.Duration
	MaxRetries        int
	RetryInitialWait  time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type InterviewConfig struct {
	QuestionCount  int
	IdleTTL        time.Duration
	SweepInterval  time.Duration
	CatalogPath    string
	ReportTimeout  time.Duration
	RubricContexts int
}

type JobsConfig struct {
	AdzunaAppID   string
	AdzunaAPIKey  string
	AdzunaCountry string
	AdzunaBaseURL string
	SearchTimeout time.Duration
	MatchLimit    int
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "mock_interview"),
			SQLitePath: getEnv("SQLITE_PATH", "./data/mock_interview.db"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "mock_interview_docs"),
		},
		AI: AIConfig{
			Provider:          strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel:    getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			DeepSeekAPIKey:    getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekBaseURL:   getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
			DeepSeekModel:     getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			Timeout:           getEnvAsDuration("AI_TIMEOUT", "8s"),
			TranscribeTimeout: getEnvAsDuration("TRANSCRIBE_TIMEOUT", "30s"),
			MaxRetries:        getEnvAsInt("AI_MAX_RETRIES", 2),
			RetryInitialWait:  getEnvAsDuration("AI_RETRY_INITIAL_DELAY", "500ms"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Interview: InterviewConfig{
			QuestionCount:  getEnvAsInt("QUESTION_COUNT", 5),
			IdleTTL:        getEnvAsDuration("SESSION_IDLE_TTL", "2h"),
			SweepInterval:  getEnvAsDuration("SESSION_SWEEP_INTERVAL", "5m"),
			CatalogPath:    getEnv("CATALOG_PATH", ""),
			ReportTimeout:  getEnvAsDuration("REPORT_TIMEOUT", "30s"),
			RubricContexts: getEnvAsInt("RUBRIC_CONTEXTS", 3),
		},
		Jobs: JobsConfig{
			AdzunaAppID:   getEnv("ADZUNA_APP_ID", ""),
			AdzunaAPIKey:  getEnv("ADZUNA_API_KEY", ""),
			AdzunaCountry: getEnv("ADZUNA_COUNTRY", "us"),
			AdzunaBaseURL: getEnv("ADZUNA_BASE_URL", "https://api.adzuna.com/v1/api/jobs"),
			SearchTimeout: getEnvAsDuration("JOB_SEARCH_TIMEOUT", "5s"),
			MatchLimit:    getEnvAsInt("JOB_MATCH_LIMIT", 10),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// AIEnabled reports whether the selected provider has credentials.
func (c *Config) AIEnabled() bool {
	switch c.AI.Provider {
	case "deepseek":
		return c.AI.DeepSeekAPIKey != ""
	case "gemini":
		return c.AI.GeminiAPIKey != ""
	default:
		return false
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
