package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrNoReportFunc = errors.New("report function not set")

// Scheduler runs the usage report on a cron schedule (UTC).
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	log        *zap.Logger
}

func New(spec string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		log:    log.Named("scheduler"),
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job. Without a report function, or when the
// job is already registered, it does nothing.
func (s *Scheduler) Start() error {
	if s.IsRunning() {
		return nil
	}
	if s.reportFunc == nil {
		s.log.Warn("report function not set, scheduler will not generate reports")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.log.Info("scheduled report triggered", zap.String("spec", s.spec))
		if err := s.Trigger(s.ctx); err != nil {
			s.log.Error("scheduled report failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Trigger runs the report immediately.
func (s *Scheduler) Trigger(ctx context.Context) error {
	if s.reportFunc == nil {
		return ErrNoReportFunc
	}
	return s.reportFunc(ctx)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler stopped")
}

// IsRunning reports whether the report job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
