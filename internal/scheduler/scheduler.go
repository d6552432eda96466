package scheduler

import (
	"context"
	"log/slog"
	"time"

	"post_scheduler/internal/domain"
)

// Dispatcher defines the interface for dispatch operations.
type Dispatcher interface {
	Dispatch(ctx context.Context) (*domain.DispatchStats, error)
}

type Scheduler struct {
	dispatcher  Dispatcher
	interval    time.Duration
	tickTimeout time.Duration
	logger      *slog.Logger
}

func NewScheduler(dispatcher Dispatcher, interval, tickTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		dispatcher:  dispatcher,
		interval:    interval,
		tickTimeout: tickTimeout,
		logger:      logger.With("component", "scheduler"),
	}
}

// Start runs one tick immediately and then one per interval until ctx is
// cancelled. Tick failures are logged and never stop the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "tick_timeout", s.tickTimeout)

	s.runTick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panicked", "panic", r)
		}
	}()

	tickCtx := ctx
	if s.tickTimeout > 0 {
		var cancel context.CancelFunc
		tickCtx, cancel = context.WithTimeout(ctx, s.tickTimeout)
		defer cancel()
	}

	if _, err := s.dispatcher.Dispatch(tickCtx); err != nil {
		s.logger.Error("dispatch failed", "error", err)
	}
}
