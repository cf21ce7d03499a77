package translate

import (
	"context"

	"go.uber.org/zap"

	"chat-translator/internal/config"
	"chat-translator/internal/llm"
)

// New builds the Service for cfg.TranslatorProvider.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Service, error) {
	if cfg.TranslatorProvider == config.ProviderGoogle {
		return NewGoogleService(ctx, cfg.GoogleAPIKey, cfg.GoogleCredentialsJSON, log)
	}
	client, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewLLMService(client, log), nil
}
