package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/storage"
)

// SessionEntry is one completed translation turn.
type SessionEntry struct {
	UserID         string    `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLanguage string    `json:"source_language,omitempty"`
	TargetLanguage string    `json:"target_language,omitempty"`
}

// Store is an append-only log of entries persisted as a single JSON array.
type Store struct {
	docs storage.Store
	key  string
	log  *zap.Logger

	mu      sync.RWMutex
	entries []SessionEntry
}

func NewStore(ctx context.Context, docs storage.Store, key string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{docs: docs, key: key, log: log.Named("history")}
	entries, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.entries = entries
	s.log.Info("history loaded", zap.Int("entries", len(entries)))
	return s, nil
}

// Load reads the persisted sequence without touching the in-memory state.
func (s *Store) Load(ctx context.Context) ([]SessionEntry, error) {
	data, err := s.docs.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []SessionEntry{}, nil
		}
		return nil, errs.NewStorageError("load history", err)
	}
	return s.decode(data)
}

func (s *Store) decode(data []byte) ([]SessionEntry, error) {
	entries := []SessionEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errs.NewCorruptStateError(s.key, err)
	}
	for i, e := range entries {
		if e.UserID == "" || e.Timestamp.IsZero() {
			return nil, errs.NewCorruptStateError(s.key, fmt.Errorf("entry %d is incomplete", i))
		}
	}
	return entries, nil
}

// Append persists the sequence extended by e. The persisted document is
// re-read inside the backend update, so entries appended by other processes
// are kept and picked up by the in-memory log, which only changes once the
// whole document is durable.
func (s *Store) Append(ctx context.Context, e SessionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []SessionEntry
	err := s.docs.Update(ctx, s.key, func(old []byte) ([]byte, error) {
		current, err := s.decode(old)
		if err != nil {
			return nil, err
		}
		current = append(current, e)
		data, err := json.MarshalIndent(current, "", "  ")
		if err != nil {
			return nil, errs.NewStorageError("encode history", err)
		}
		next = current
		return data, nil
	})
	if err != nil {
		if errs.Code(err) == errs.CodeUnknown {
			err = errs.NewStorageError("save history", err)
		}
		s.log.Warn("history not persisted", zap.String("user_id", e.UserID), zap.Error(err))
		return err
	}
	s.entries = next
	return nil
}

// Entries returns a copy of the full log in append order.
func (s *Store) Entries() []SessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SessionEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) ForUser(userID string) []SessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []SessionEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
