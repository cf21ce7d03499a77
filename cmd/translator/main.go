package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chat-translator/internal/app"
	"chat-translator/internal/console"
)

func main() {
	cfg, warnings, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()
	for _, w := range warnings {
		a.Log.Debug(w)
	}

	if err := console.New(a.Coordinator, os.Stdin, os.Stdout, a.Log).Run(ctx); err != nil {
		a.Log.Error("console session failed", zap.Error(err))
	}
}
