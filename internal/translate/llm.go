package translate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/llm"
)

const detectPrompt = `Identify the language of the user's message.
Reply with the ISO 639-1 code only (for example: en, es, de).
If the language cannot be determined, reply with: und`

const translatePrompt = `You are a translator. Translate the user's message from %s to %s.
Reply with the translation only, without quotes, notes or explanations.`

// LLMService implements Service on top of a chat model.
type LLMService struct {
	client llm.Client
	log    *zap.Logger
}

func NewLLMService(client llm.Client, log *zap.Logger) *LLMService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMService{client: client, log: log.Named("llm-translate")}
}

func (s *LLMService) Detect(ctx context.Context, text string) (string, error) {
	resp, err := s.client.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: detectPrompt},
		{Role: llm.RoleUser, Content: text},
	})
	if err != nil {
		return "", errs.NewDetectionError("detection request failed", err)
	}
	s.log.Debug("detect", zap.String("model", resp.Model), zap.Int("tokens", resp.TotalTokens))

	code := NormalizeCode(cleanReply(resp.Content))
	if code == Undetermined || !ValidCode(code) {
		return "", errs.NewDetectionError(fmt.Sprintf("indeterminate language %q", resp.Content), nil)
	}
	return code, nil
}

func (s *LLMService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	resp, err := s.client.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(translatePrompt, sourceLang, targetLang)},
		{Role: llm.RoleUser, Content: text},
	})
	if err != nil {
		return "", errs.NewTranslationError(sourceLang, targetLang, err)
	}
	s.log.Debug("translate", zap.String("model", resp.Model), zap.Int("tokens", resp.TotalTokens))

	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", errs.NewTranslationError(sourceLang, targetLang, fmt.Errorf("empty translation"))
	}
	return out, nil
}

// cleanReply drops quotes, trailing punctuation and anything after the
// first word of a model reply.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	if f := strings.Fields(s); len(f) > 0 {
		s = f[0]
	}
	return strings.Trim(s, "\"'`.,;:!")
}
