package app

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chat-translator/internal/config"
	"chat-translator/internal/conversation"
	"chat-translator/internal/history"
	"chat-translator/internal/logger"
	"chat-translator/internal/profile"
	"chat-translator/internal/storage"
	"chat-translator/internal/translate"
)

// App holds the process-wide stores and the coordinator built on them.
type App struct {
	Config      *config.Config
	Log         *zap.Logger
	Docs        storage.Store
	Profiles    *profile.Store
	History     *history.Store
	Coordinator *conversation.Coordinator
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*config.Config, []string, error) {
	var warnings []string
	if err := godotenv.Load(".env"); err != nil {
		warnings = append(warnings, fmt.Sprintf(".env file not found: %v", err))
	}
	cfg, err := config.Load()
	return cfg, warnings, err
}

// New builds the logger, stores and coordinator described by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	svc, err := translate.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init translator: %w", err)
	}
	return NewWithTranslator(ctx, cfg, log, svc)
}

// NewWithTranslator is New with an explicit capability backend.
func NewWithTranslator(ctx context.Context, cfg *config.Config, log *zap.Logger, svc translate.Service) (*App, error) {
	docs, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	profiles, err := profile.NewStore(ctx, docs, cfg.ProfilesKey, log)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}
	hist, err := history.NewStore(ctx, docs, cfg.HistoryKey, log)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}

	coord := conversation.New(profiles, hist, svc,
		conversation.WithCapabilityTimeout(cfg.CapabilityTimeout),
		conversation.WithLogger(log),
		conversation.WithClock(time.Now),
	)
	log.Info("translator ready",
		zap.String("storage", string(cfg.StorageBackend)),
		zap.String("provider", string(cfg.TranslatorProvider)),
	)
	return &App{
		Config:      cfg,
		Log:         log,
		Docs:        docs,
		Profiles:    profiles,
		History:     hist,
		Coordinator: coord,
	}, nil
}

func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.Docs.Close()
}
