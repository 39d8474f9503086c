package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/medwatch-backend/internal/pkg/retry"
	"github.com/futig/medwatch-backend/internal/questionnaire"
	"github.com/joho/godotenv"
)

// Turn guard backends
const (
	TurnGuardMemory = "memory"
	TurnGuardRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	DatabaseCfg DatabaseConfig

	// External service configurations
	LLMConnectorCfg      LLMConnectorConfig      `envPrefix:"LLM_"`
	ASRConnectorCfg      ASRConnectorConfig      `envPrefix:"ASR_"`
	ProductsConnectorCfg ProductsConnectorConfig `envPrefix:"PRODUCTS_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Per-session turn serialization
	TurnGuardCfg TurnGuardConfig `envPrefix:"TURN_GUARD_"`
	RedisCfg     RedisConfig     `envPrefix:"REDIS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Questionnaire file, the embedded one is used when empty
	QuestionnairePath string `env:"QUESTIONNAIRE_PATH"`
	Questionnaire     *questionnaire.Questionnaire

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (only required by the bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// DatabaseConfig holds the Postgres pool settings
type DatabaseConfig struct {
	URL               string        `env:"DATABASE_URL,notEmpty"`
	MaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	// Postgres may still be starting when the service comes up
	ConnectAttempts uint          `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	ConnectDelay    time.Duration `env:"DB_CONNECT_DELAY" envDefault:"1s"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	WebhookURL         string `env:"WEBHOOK_URL"`
	WebhookListenAddr  string `env:"WEBHOOK_LISTEN_ADDR" envDefault:":8443"`
	UseWebhook         bool   `env:"USE_WEBHOOK" envDefault:"false"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int    `env:"MAX_CONCURRENT_USERS" envDefault:"100"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	CorrectAnswerEndpoint string               `env:"CORRECT_ANSWER_ENDPOINT" envDefault:"/correct-answer"`
	ReviewReportEndpoint  string               `env:"REVIEW_REPORT_ENDPOINT" envDefault:"/review-report"`
	CorrectionTimeout     time.Duration        `env:"CORRECTION_TIMEOUT" envDefault:"20s"`
	Retry                 pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ASRConnectorConfig struct {
	HTTPClientConfig
	TranscribeEndpoint string               `env:"TRANSCRIBE_ENDPOINT" envDefault:"/transcribe"`
	Language           string               `env:"LANGUAGE" envDefault:"en-US"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ProductsConnectorConfig struct {
	HTTPClientConfig
	SearchEndpoint string               `env:"SEARCH_ENDPOINT" envDefault:"/products"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	// Receivers verify the X-MedWatch-Signature header with this secret
	SigningSecret string               `env:"SIGNING_SECRET"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"20s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// TurnGuardConfig selects how concurrent turns on one session are rejected
type TurnGuardConfig struct {
	Backend string        `env:"BACKEND" envDefault:"memory"`
	TTL     time.Duration `env:"TTL" envDefault:"2m"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"KEY_PREFIX" envDefault:"medwatch:turn:"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxAudioFileSize int64 `env:"MAX_AUDIO_FILE_SIZE" envDefault:"26214400"` // 25 MiB
	MaxUploadSize    int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`     // 32 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadQuestionnaire(cfg); err != nil {
		return nil, fmt.Errorf("load questionnaire: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.TelegramCfg.UseWebhook && cfg.TelegramCfg.WebhookURL == "" {
		errors = append(errors, "TELEGRAM_WEBHOOK_URL is required when TELEGRAM_USE_WEBHOOK is true")
	}

	// Validate Database configuration
	db := cfg.DatabaseCfg
	if db.MaxConns < 1 || db.MaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", db.MaxConns))
	}

	if db.MinConns < 0 || db.MinConns > db.MaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", db.MaxConns, db.MinConns))
	}

	if db.ConnectAttempts < 1 {
		errors = append(errors, "DB_CONNECT_ATTEMPTS must be at least 1")
	}

	// Validate turn guard configuration
	if cfg.TurnGuardCfg.Backend != TurnGuardMemory && cfg.TurnGuardCfg.Backend != TurnGuardRedis {
		errors = append(errors, fmt.Sprintf("TURN_GUARD_BACKEND must be %q or %q, got %q", TurnGuardMemory, TurnGuardRedis, cfg.TurnGuardCfg.Backend))
	}

	if cfg.TurnGuardCfg.TTL <= cfg.LLMConnectorCfg.CorrectionTimeout {
		errors = append(errors, fmt.Sprintf("TURN_GUARD_TTL (%s) must be longer than LLM_CORRECTION_TIMEOUT (%s)", cfg.TurnGuardCfg.TTL, cfg.LLMConnectorCfg.CorrectionTimeout))
	}

	// Real connectors need somewhere to call
	if !cfg.EnableMocks {
		for name, url := range map[string]string{
			"LLM_SERVICE_URL":      cfg.LLMConnectorCfg.Url,
			"ASR_SERVICE_URL":      cfg.ASRConnectorCfg.Url,
			"PRODUCTS_SERVICE_URL": cfg.ProductsConnectorCfg.Url,
		} {
			if url == "" {
				errors = append(errors, fmt.Sprintf("%s is required when ENABLE_MOCKS is false", name))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func loadQuestionnaire(cfg *Config) error {
	if cfg.QuestionnairePath == "" {
		cfg.Questionnaire = questionnaire.Default()
		return nil
	}

	// Check if file exists
	if _, err := os.Stat(cfg.QuestionnairePath); os.IsNotExist(err) {
		fmt.Printf("Warning: questionnaire file not found at %s, using embedded questionnaire\n", cfg.QuestionnairePath)
		cfg.Questionnaire = questionnaire.Default()
		return nil
	}

	data, err := os.ReadFile(cfg.QuestionnairePath)
	if err != nil {
		return fmt.Errorf("read questionnaire file: %w", err)
	}

	q, err := questionnaire.Parse(data)
	if err != nil {
		return fmt.Errorf("questionnaire file %s: %w", cfg.QuestionnairePath, err)
	}

	cfg.Questionnaire = q

	fmt.Printf("Loaded %d questions from %s\n", q.Count(), cfg.QuestionnairePath)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
