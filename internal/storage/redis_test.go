package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisStore_SaveAndLoad(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, mr.Addr(), "", 0, "translator:")
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer s.Close()

	if _, err := s.Load(ctx, "history"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.Save(ctx, "history", []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "history", []byte(`[{"user_id":"u1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := s.Load(ctx, "history")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `[{"user_id":"u1"}]` {
		t.Fatalf("unexpected content: %s", data)
	}

	raw, err := mr.Get("translator:history")
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw != string(data) {
		t.Fatalf("prefix not applied, raw=%q", raw)
	}
}

func TestRedisStore_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisStore(context.Background(), addr, "", 0, ""); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestRedisStore_UpdateAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	a, err := NewRedisStore(ctx, mr.Addr(), "", 0, "translator:")
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer a.Close()
	b, err := NewRedisStore(ctx, mr.Addr(), "", 0, "translator:")
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer b.Close()
	testConcurrentUpdates(t, a, b)
}

func TestRedisStore_UpdateAbortKeepsDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0, "")
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer s.Close()
	testUpdateAbort(t, s)
}
