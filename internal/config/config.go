package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"

	errs "chat-translator/internal/errors"
)

type TranslatorProvider string

const (
	ProviderOpenAI TranslatorProvider = "openai"
	ProviderYandex TranslatorProvider = "yandex"
	ProviderGoogle TranslatorProvider = "google"
)

type StorageBackend string

const (
	BackendFile   StorageBackend = "file"
	BackendRedis  StorageBackend = "redis"
	BackendSQLite StorageBackend = "sqlite"
)

type Config struct {
	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	// Storage
	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file" validate:"oneof=file redis sqlite"`
	DataDir        string         `env:"DATA_DIR" envDefault:"data" validate:"required_if=StorageBackend file"`
	ProfilesKey    string         `env:"PROFILES_KEY" envDefault:"profiles" validate:"required,nefield=HistoryKey"`
	HistoryKey     string         `env:"HISTORY_KEY" envDefault:"history" validate:"required"`
	RedisAddr      string         `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379" validate:"required_if=StorageBackend redis"`
	RedisPassword  string         `env:"REDIS_PASSWORD"`
	RedisDB        int            `env:"REDIS_DB" envDefault:"0" validate:"min=0"`
	SQLitePath     string         `env:"SQLITE_PATH" envDefault:"data/translator.db" validate:"required_if=StorageBackend sqlite"`

	// Translation capability
	TranslatorProvider TranslatorProvider `env:"TRANSLATOR_PROVIDER" envDefault:"openai" validate:"oneof=openai yandex google"`
	OpenAIAPIKey       string             `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string             `env:"OPENAI_BASE_URL"`
	OpenAIModel        string             `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken   string             `env:"YANDEX_OAUTH_TOKEN" validate:"required_if=TranslatorProvider yandex"`
	YandexFolderID     string             `env:"YANDEX_FOLDER_ID" validate:"required_if=TranslatorProvider yandex"`
	GoogleAPIKey       string             `env:"GOOGLE_API_KEY"`
	// Service account JSON; takes precedence over GOOGLE_API_KEY.
	GoogleCredentialsJSON string        `env:"GOOGLE_CREDENTIALS_JSON"`
	CapabilityTimeout     time.Duration `env:"CAPABILITY_TIMEOUT" envDefault:"30s" validate:"min=0"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Telegram
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`
	ReportCron       string `env:"REPORT_CRON" envDefault:"0 21 * * *"`
	HistoryPageSize  int    `env:"HISTORY_PAGE_SIZE" envDefault:"10" validate:"min=1,max=100"`
}

var errGoogleCredentials = errors.New("google provider requires GOOGLE_API_KEY or GOOGLE_CREDENTIALS_JSON")

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errs.NewConfigError("failed to parse config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errs.NewConfigError("invalid config", err)
	}
	if c.TranslatorProvider == ProviderGoogle && c.GoogleAPIKey == "" && c.GoogleCredentialsJSON == "" {
		return errs.NewConfigError("invalid config", errGoogleCredentials)
	}
	return nil
}
