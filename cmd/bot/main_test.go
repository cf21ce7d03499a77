package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubBot struct {
	err error
}

func (b stubBot) Start(context.Context) error { return b.err }

type blockingBot struct{}

func (blockingBot) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

type stubScheduler struct {
	stopped chan struct{}
}

func (s *stubScheduler) Stop() { close(s.stopped) }

func serveWithTimeout(t *testing.T, ctx context.Context, bot pollingBot) (*stubScheduler, error) {
	t.Helper()
	sched := &stubScheduler{stopped: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- serve(ctx, bot, sched) }()
	select {
	case err := <-done:
		return sched, err
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not return")
		return nil, nil
	}
}

func TestServeReturnsWhenBotStops(t *testing.T) {
	sched, err := serveWithTimeout(t, context.Background(), stubBot{})
	if err != nil {
		t.Fatalf("clean bot stop reported as error: %v", err)
	}
	select {
	case <-sched.stopped:
	default:
		t.Fatalf("scheduler not stopped")
	}
}

func TestServePropagatesBotError(t *testing.T) {
	boom := errors.New("updates failed")
	_, err := serveWithTimeout(t, context.Background(), stubBot{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("want bot error, got %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sched, err := serveWithTimeout(t, ctx, blockingBot{})
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	select {
	case <-sched.stopped:
	default:
		t.Fatalf("scheduler not stopped")
	}
}
