package translate

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gtranslate "google.golang.org/api/translate/v2"

	errs "chat-translator/internal/errors"
)

// GoogleService implements Service with the Cloud Translation v2 API.
type GoogleService struct {
	svc *gtranslate.Service
	log *zap.Logger
}

// NewGoogleService authenticates with a service account JSON when given,
// otherwise with the API key.
func NewGoogleService(ctx context.Context, apiKey, credentialsJSON string, log *zap.Logger) (*GoogleService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var opts []option.ClientOption
	switch {
	case credentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(credentialsJSON), gtranslate.CloudTranslationScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse google credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(creds.TokenSource))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		return nil, fmt.Errorf("google translation requires an api key or credentials")
	}

	svc, err := gtranslate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate service: %w", err)
	}
	return &GoogleService{svc: svc, log: log.Named("google-translate")}, nil
}

func (s *GoogleService) Detect(ctx context.Context, text string) (string, error) {
	resp, err := s.svc.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return "", errs.NewDetectionError("detection request failed", err)
	}
	return pickDetection(resp.Detections)
}

func (s *GoogleService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	resp, err := s.svc.Translations.List([]string{text}, targetLang).
		Source(sourceLang).
		Format("text").
		Context(ctx).
		Do()
	if err != nil {
		return "", errs.NewTranslationError(sourceLang, targetLang, err)
	}
	if len(resp.Translations) == 0 || resp.Translations[0].TranslatedText == "" {
		return "", errs.NewTranslationError(sourceLang, targetLang, fmt.Errorf("empty translation"))
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}

// pickDetection returns the most confident language for the first input.
func pickDetection(detections [][]*gtranslate.DetectionsResourceItem) (string, error) {
	if len(detections) == 0 || len(detections[0]) == 0 {
		return "", errs.NewDetectionError("no detection returned", nil)
	}
	var best *gtranslate.DetectionsResourceItem
	for _, d := range detections[0] {
		if d == nil {
			continue
		}
		if best == nil || d.Confidence > best.Confidence {
			best = d
		}
	}
	if best == nil {
		return "", errs.NewDetectionError("no detection returned", nil)
	}
	code := NormalizeCode(best.Language)
	if code == Undetermined || !ValidCode(code) {
		return "", errs.NewDetectionError(fmt.Sprintf("indeterminate language %q", best.Language), nil)
	}
	return code, nil
}
