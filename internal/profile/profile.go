package profile

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	errs "chat-translator/internal/errors"
	"chat-translator/internal/storage"
)

type UserProfile struct {
	UserID         string `json:"user_id"`
	TargetLanguage string `json:"target_language"`
}

// Store keeps every profile in memory and rewrites the whole document on
// each mutation. Reads are served from memory and may lag writes made by
// other processes until the next Put.
type Store struct {
	docs storage.Store
	key  string
	log  *zap.Logger

	mu       sync.RWMutex
	profiles map[string]UserProfile
}

// NewStore loads the existing profiles document (empty when absent).
func NewStore(ctx context.Context, docs storage.Store, key string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{docs: docs, key: key, log: log.Named("profiles")}
	profiles, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.profiles = profiles
	s.log.Info("profiles loaded", zap.Int("count", len(profiles)))
	return s, nil
}

// Load reads the persisted mapping without touching the in-memory state.
func (s *Store) Load(ctx context.Context) (map[string]UserProfile, error) {
	data, err := s.docs.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]UserProfile{}, nil
		}
		return nil, errs.NewStorageError("load profiles", err)
	}
	return s.decode(data)
}

func (s *Store) decode(data []byte) (map[string]UserProfile, error) {
	profiles := map[string]UserProfile{}
	if len(data) == 0 {
		return profiles, nil
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, errs.NewCorruptStateError(s.key, err)
	}
	for id, p := range profiles {
		if p.UserID != id || p.TargetLanguage == "" {
			return nil, errs.NewCorruptStateError(s.key, errors.New("profile "+id+" is inconsistent"))
		}
	}
	return profiles, nil
}

// Save overwrites the document with the full mapping.
func (s *Store) Save(ctx context.Context, profiles map[string]UserProfile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return errs.NewStorageError("encode profiles", err)
	}
	if err := s.docs.Save(ctx, s.key, data); err != nil {
		return errs.NewStorageError("save profiles", err)
	}
	return nil
}

func (s *Store) Get(userID string) (UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	return p, ok
}

// Put inserts or overwrites a profile and persists before returning. The
// document is re-read inside the backend update so that profiles written by
// other processes survive, and the in-memory mapping is refreshed from it.
// On a failed save the previous mapping is kept.
func (s *Store) Put(ctx context.Context, p UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next map[string]UserProfile
	err := s.docs.Update(ctx, s.key, func(old []byte) ([]byte, error) {
		current, err := s.decode(old)
		if err != nil {
			return nil, err
		}
		current[p.UserID] = p
		data, err := json.MarshalIndent(current, "", "  ")
		if err != nil {
			return nil, errs.NewStorageError("encode profiles", err)
		}
		next = current
		return data, nil
	})
	if err != nil {
		if errs.Code(err) == errs.CodeUnknown {
			err = errs.NewStorageError("save profiles", err)
		}
		s.log.Warn("profile not persisted", zap.String("user_id", p.UserID), zap.Error(err))
		return err
	}
	s.profiles = next
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
