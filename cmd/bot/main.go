package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chat-translator/internal/analytics"
	"chat-translator/internal/app"
	"chat-translator/internal/history"
	"chat-translator/internal/scheduler"
	"chat-translator/internal/telegram"
)

func main() {
	cfg, warnings, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.TelegramBotToken == "" {
		fmt.Fprintln(os.Stderr, "TELEGRAM_BOT_TOKEN is required")
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

	bot, err := telegram.New(cfg.TelegramBotToken, a.Coordinator, telegram.Options{
		AdminUserID:     cfg.AdminUserID,
		HistoryPageSize: cfg.HistoryPageSize,
		Logger:          a.Log,
	})
	if err != nil {
		a.Log.Fatal("failed to create bot", zap.Error(err))
	}

	report := dailyReport(a.History, bot, a.Log)
	bot.SetReportFunction(report)

	sched := scheduler.New(cfg.ReportCron, a.Log)
	if cfg.AdminUserID != 0 {
		sched.SetReportFunction(func(ctx context.Context) error { return report(ctx, false) })
	}
	if err := sched.Start(); err != nil {
		a.Log.Fatal("failed to start scheduler", zap.Error(err))
	}

	if err := serve(ctx, bot, sched); err != nil {
		a.Log.Error("bot stopped with error", zap.Error(err))
	}
}

var errBotStopped = errors.New("bot stopped")

type pollingBot interface {
	Start(ctx context.Context) error
}

type stoppable interface {
	Stop()
}

// serve runs the bot until it returns or ctx is done and then stops the
// scheduler. A bot that returns without error still ends the group.
func serve(ctx context.Context, bot pollingBot, sched stoppable) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := bot.Start(gctx); err != nil {
			return err
		}
		return errBotStopped
	})
	g.Go(func() error {
		<-gctx.Done()
		sched.Stop()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errBotStopped) {
		return err
	}
	return nil
}

// dailyReport summarises today's turns (UTC) and sends them to the admin.
func dailyReport(hist *history.Store, bot *telegram.Bot, log *zap.Logger) telegram.ReportFunc {
	return func(ctx context.Context, asJSON bool) error {
		stats := analytics.AnalyzeDay(hist.Entries(), time.Now().UTC())
		log.Info("daily report generated",
			zap.String("date", stats.Date),
			zap.Int("turns", stats.TotalTurns),
			zap.Int("users", stats.UniqueUsers),
			zap.Bool("json", asJSON),
		)
		if !asJSON {
			return bot.SendToAdmin(stats.Summary())
		}
		body, err := stats.ToJSON()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return bot.SendToAdmin(body)
	}
}
