package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/history"
	"chat-translator/internal/logger"
	"chat-translator/internal/profile"
	"chat-translator/internal/translate"
)

type ProfileStore interface {
	Get(userID string) (profile.UserProfile, bool)
	Put(ctx context.Context, p profile.UserProfile) error
}

type HistoryStore interface {
	Append(ctx context.Context, e history.SessionEntry) error
	ForUser(userID string) []history.SessionEntry
}

// Coordinator runs conversational turns: resolve the user, detect the
// source language, translate and log the exchange.
type Coordinator struct {
	profiles   ProfileStore
	history    HistoryStore
	translator translate.Service

	now        func() time.Time
	capTimeout time.Duration
	log        *zap.Logger
	onState    func(userID string, s State)
}

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithCapabilityTimeout bounds each Detect and Translate call. Zero
// disables the bound.
func WithCapabilityTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.capTimeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithStateHook registers a callback invoked on every turn state change.
func WithStateHook(fn func(userID string, s State)) Option {
	return func(c *Coordinator) { c.onState = fn }
}

func New(profiles ProfileStore, hist HistoryStore, translator translate.Service, opts ...Option) *Coordinator {
	c := &Coordinator{
		profiles:   profiles,
		history:    hist,
		translator: translator,
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("conversation")
	return c
}

// RegisterUser creates or overwrites the profile of userID.
func (c *Coordinator) RegisterUser(ctx context.Context, userID, targetLanguage string) (profile.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	targetLanguage = strings.TrimSpace(targetLanguage)
	if userID == "" {
		return profile.UserProfile{}, errs.NewInvalidInputError("user_id", "user id must not be empty")
	}
	if targetLanguage == "" {
		return profile.UserProfile{}, errs.NewInvalidInputError("target_language", "target language must not be empty")
	}
	if !translate.ValidCode(targetLanguage) {
		return profile.UserProfile{}, errs.NewInvalidInputError("target_language",
			fmt.Sprintf("%q is not a language code", targetLanguage))
	}

	p := profile.UserProfile{UserID: userID, TargetLanguage: translate.NormalizeCode(targetLanguage)}
	if err := c.profiles.Put(ctx, p); err != nil {
		return profile.UserProfile{}, err
	}
	c.log.Info("user registered", zap.String("user_id", p.UserID), zap.String("target_language", p.TargetLanguage))
	return p, nil
}

func (c *Coordinator) ResolveUser(userID string) (profile.UserProfile, error) {
	p, ok := c.profiles.Get(strings.TrimSpace(userID))
	if !ok {
		return profile.UserProfile{}, errs.NewUnknownUserError(userID)
	}
	return p, nil
}

// History returns the entries logged for a registered user in append order.
func (c *Coordinator) History(userID string) ([]history.SessionEntry, error) {
	p, err := c.ResolveUser(userID)
	if err != nil {
		return nil, err
	}
	return c.history.ForUser(p.UserID), nil
}

// TranslateTurn runs one turn. Nothing is logged unless every step
// succeeds; failures are never retried.
func (c *Coordinator) TranslateTurn(ctx context.Context, userID, text string) (history.SessionEntry, error) {
	t := &turn{c: c, userID: userID}

	t.advance(StateResolving)
	p, err := c.ResolveUser(userID)
	if err != nil {
		return t.fail(err)
	}
	if strings.TrimSpace(text) == "" {
		return t.fail(errs.NewInvalidInputError("text", "text must not be empty"))
	}

	t.advance(StateDetecting)
	sourceLang, err := c.detect(ctx, text)
	if err != nil {
		return t.fail(err)
	}

	// same-language turns are still sent to the translator
	t.advance(StateTranslating)
	translated, err := c.translate(ctx, text, sourceLang, p.TargetLanguage)
	if err != nil {
		return t.fail(err)
	}

	entry := history.SessionEntry{
		UserID:         p.UserID,
		Timestamp:      c.now(),
		SourceText:     text,
		TranslatedText: translated,
		SourceLanguage: sourceLang,
		TargetLanguage: p.TargetLanguage,
	}

	t.advance(StateLogging)
	if err := c.history.Append(ctx, entry); err != nil {
		if !isStoreError(err) {
			err = errs.NewStorageError("append history", err)
		}
		return t.fail(err)
	}

	t.advance(StateDone)
	c.log.Info("turn completed",
		zap.String("user_id", p.UserID),
		zap.String("source_language", sourceLang),
		zap.String("target_language", p.TargetLanguage),
		zap.String("text", logger.Truncate(text, 64)),
	)
	return entry, nil
}

func (c *Coordinator) detect(ctx context.Context, text string) (string, error) {
	ctx, cancel := c.capabilityContext(ctx)
	defer cancel()

	lang, err := c.translator.Detect(ctx, text)
	if err != nil {
		var de *errs.DetectionError
		if errors.As(err, &de) {
			return "", err
		}
		return "", errs.NewDetectionError("detection failed", err)
	}
	code := translate.NormalizeCode(lang)
	if code == "" || code == translate.Undetermined || !translate.ValidCode(code) {
		return "", errs.NewDetectionError(fmt.Sprintf("indeterminate language %q", lang), nil)
	}
	return code, nil
}

func (c *Coordinator) translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	ctx, cancel := c.capabilityContext(ctx)
	defer cancel()

	out, err := c.translator.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		var te *errs.TranslationError
		if errors.As(err, &te) {
			return "", err
		}
		return "", errs.NewTranslationError(sourceLang, targetLang, err)
	}
	return out, nil
}

func (c *Coordinator) capabilityContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.capTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.capTimeout)
}

func isStoreError(err error) bool {
	var ce *errs.CorruptStateError
	var se *errs.StorageError
	return errors.As(err, &ce) || errors.As(err, &se)
}

// turn tracks the state of one TranslateTurn call.
type turn struct {
	c      *Coordinator
	userID string
	state  State
}

func (t *turn) advance(s State) {
	if t.state.Terminal() {
		return
	}
	t.c.log.Debug("turn state", zap.String("user_id", t.userID),
		zap.Stringer("from", t.state), zap.Stringer("to", s))
	t.state = s
	if t.c.onState != nil {
		t.c.onState(t.userID, s)
	}
}

func (t *turn) fail(err error) (history.SessionEntry, error) {
	t.c.log.Warn("turn failed", zap.String("user_id", t.userID),
		zap.Stringer("state", t.state), zap.String("code", errs.Code(err)), zap.Error(err))
	t.advance(StateFailed)
	return history.SessionEntry{}, err
}
