package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
)

// testConcurrentUpdates increments a counter document through two handles
// on the same backend and expects no increment to be lost.
func testConcurrentUpdates(t *testing.T, a, b Store) {
	t.Helper()
	ctx := context.Background()
	const perStore = 20

	incr := func(old []byte) ([]byte, error) {
		n := 0
		if old != nil {
			var err error
			if n, err = strconv.Atoi(string(old)); err != nil {
				return nil, err
			}
		}
		return []byte(strconv.Itoa(n + 1)), nil
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2*perStore)
	for _, s := range []Store{a, b} {
		wg.Add(1)
		go func(s Store) {
			defer wg.Done()
			for range perStore {
				if err := s.Update(ctx, "counter", incr); err != nil {
					errCh <- err
				}
			}
		}(s)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("update: %v", err)
	}

	data, err := a.Load(ctx, "counter")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != strconv.Itoa(2*perStore) {
		t.Fatalf("lost updates: counter=%s, want %d", data, 2*perStore)
	}
}

func testUpdateAbort(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.Save(ctx, "profiles", []byte("v1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	boom := errors.New("boom")
	var seen []byte
	err := s.Update(ctx, "profiles", func(old []byte) ([]byte, error) {
		seen = old
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want fn error, got %v", err)
	}
	if string(seen) != "v1" {
		t.Fatalf("fn saw %q", seen)
	}
	data, err := s.Load(ctx, "profiles")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "v1" {
		t.Fatalf("aborted update changed document: %q", data)
	}

	missing := []byte("sentinel")
	if err := s.Update(ctx, "history", func(old []byte) ([]byte, error) {
		missing = old
		return []byte("[]"), nil
	}); err != nil {
		t.Fatalf("update absent: %v", err)
	}
	if missing != nil {
		t.Fatalf("absent document should be nil, got %q", missing)
	}
}
