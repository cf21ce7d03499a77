package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"chat-translator/internal/app"
	"chat-translator/internal/mcptools"
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
		a.Log.Warn(w)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chat-translator-mcp",
		Version: "1.0.0",
	}, nil)
	mcptools.New(a.Coordinator, a.Log).Register(server)

	a.Log.Info("MCP server listening on stdio")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil && ctx.Err() == nil {
		a.Log.Error("MCP server failed", zap.Error(err))
	}
}
