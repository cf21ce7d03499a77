package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	ctx := context.Background()

	if _, err := s.Load(ctx, "profiles"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if err := s.Save(ctx, "profiles", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save1: %v", err)
	}
	if err := s.Save(ctx, "profiles", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("save2: %v", err)
	}

	data, err := s.Load(ctx, "profiles")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"a":2}` {
		t.Fatalf("unexpected content: %s", data)
	}

	// ensure no temp files are left behind
	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) != 1 || names[0] != "profiles.json" {
		t.Fatalf("unexpected files: %s", strings.Join(names, ","))
	}
}

func TestFileStore_KeysAreIsolated(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, "profiles", []byte("p")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "history", []byte("h")); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, _ := s.Load(ctx, "profiles")
	h, _ := s.Load(ctx, "history")
	if string(p) != "p" || string(h) != "h" {
		t.Fatalf("keys mixed up: %q %q", p, h)
	}
}

func TestFileStore_RejectsBadKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := s.Save(context.Background(), key, []byte("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestFileStore_CanceledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, "history", []byte("[]")); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestFileStore_UpdateAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	b, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	testConcurrentUpdates(t, a, b)
}

func TestFileStore_UpdateAbortKeepsDocument(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	testUpdateAbort(t, s)
}
