package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/alexchny/connection-jobs/internal/domain"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Env        string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	JobQueueKey   string `envconfig:"JOB_QUEUE_KEY" default:"jobs:queue"`

	EnqueueTimeout       time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"5s"`
	SubmissionRateLimit  int           `envconfig:"SUBMISSION_RATE_LIMIT" default:"10"`
	SubmissionRateWindow time.Duration `envconfig:"SUBMISSION_RATE_WINDOW" default:"1m"`

	// worker default envelope, passed through verbatim
	JobCPURequest    string `envconfig:"JOB_MAIN_CONTAINER_CPU_REQUEST"`
	JobCPULimit      string `envconfig:"JOB_MAIN_CONTAINER_CPU_LIMIT"`
	JobMemoryRequest string `envconfig:"JOB_MAIN_CONTAINER_MEMORY_REQUEST"`
	JobMemoryLimit   string `envconfig:"JOB_MAIN_CONTAINER_MEMORY_LIMIT"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.StoreBackend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %s (must be postgres or redis)", c.StoreBackend)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.EnqueueTimeout <= 0 {
		return fmt.Errorf("ENQUEUE_TIMEOUT must be positive")
	}
	if c.SubmissionRateLimit < 1 {
		return fmt.Errorf("SUBMISSION_RATE_LIMIT must be at least 1")
	}
	if c.SubmissionRateWindow < time.Second {
		return fmt.Errorf("SUBMISSION_RATE_WINDOW must be at least 1s")
	}

	return nil
}

// WorkerResourceRequirements is never nil; unset variables leave fields empty.
func (c *Config) WorkerResourceRequirements() *domain.ResourceRequirements {
	return &domain.ResourceRequirements{
		CPURequest:    c.JobCPURequest,
		CPULimit:      c.JobCPULimit,
		MemoryRequest: c.JobMemoryRequest,
		MemoryLimit:   c.JobMemoryLimit,
	}
}

func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL: %s (must be debug, info, warn, or error)", c.LogLevel)
}
