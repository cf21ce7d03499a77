package llm

import (
	"fmt"

	"chat-translator/internal/config"
)

// New builds the chat client for cfg.TranslatorProvider. Providers that are
// not chat models have no client.
func New(cfg *config.Config) (Client, error) {
	switch cfg.TranslatorProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %s", cfg.TranslatorProvider)
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenRouterReferrer, cfg.OpenRouterTitle), nil
	case config.ProviderYandex:
		return NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
	default:
		return nil, fmt.Errorf("no llm client for provider: %s", cfg.TranslatorProvider)
	}
}
