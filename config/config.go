package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Answers  AnswersConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
	WSAllowedOrigin    string // "*" accepts any origin on /ws
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string // if set, used as-is (e.g. postgres://localhost:5432/answers?sslmode=disable)
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AnswersConfig configures the forum itself.
type AnswersConfig struct {
	SubjectType           string // recorded on follow and vote rows
	SlugPattern           string
	AutoSubscribeOnUpvote bool
	SearchLimit           int
	CacheSize             int // question slug cache entries
	CacheTTL              time.Duration
}

// WorkerConfig tunes notification delivery.
type WorkerConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
			WSAllowedOrigin:    getEnv("WS_ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "answers"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 0)),
			MaxConnLifetime: time.Duration(getEnvInt("DB_MAX_CONN_LIFETIME_MIN", 0)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Answers: AnswersConfig{
			SubjectType:           getEnv("ANSWERS_SUBJECT_TYPE", "question"),
			SlugPattern:           getEnv("ANSWERS_SLUG_PATTERN", ""),
			AutoSubscribeOnUpvote: getEnvBool("ANSWERS_AUTO_SUBSCRIBE_UPVOTE", true),
			SearchLimit:           getEnvInt("ANSWERS_SEARCH_LIMIT", 10),
			CacheSize:             getEnvInt("ANSWERS_CACHE_SIZE", 1024),
			CacheTTL:              time.Duration(getEnvInt("ANSWERS_CACHE_TTL_SEC", 300)) * time.Second,
		},
		Worker: WorkerConfig{
			MaxRetries:   getEnvInt("NOTIFY_MAX_RETRIES", 3),
			RetryBackoff: time.Duration(getEnvInt("NOTIFY_RETRY_BACKOFF_SEC", 10)) * time.Second,
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Answers.SubjectType == "" {
		return fmt.Errorf("ANSWERS_SUBJECT_TYPE must not be empty")
	}
	if c.Answers.SearchLimit <= 0 {
		return fmt.Errorf("ANSWERS_SEARCH_LIMIT must be positive, got %d", c.Answers.SearchLimit)
	}
	if c.Answers.CacheSize <= 0 {
		return fmt.Errorf("ANSWERS_CACHE_SIZE must be positive, got %d", c.Answers.CacheSize)
	}
	if c.Worker.MaxRetries < 1 {
		return fmt.Errorf("NOTIFY_MAX_RETRIES must be at least 1, got %d", c.Worker.MaxRetries)
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
