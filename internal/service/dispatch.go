package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"post_scheduler/internal/config"
	"post_scheduler/internal/domain"
)

type DispatchService struct {
	posts     PostStore
	txManager TransactionManager
	publisher Publisher
	events    EventPublisher
	metrics   Metrics
	logger    *slog.Logger
	config    config.ScheduleConfig
	now       func() time.Time
}

type DispatchOption func(*DispatchService)

// WithDispatchClock replaces the wall clock used to decide which posts are due.
func WithDispatchClock(now func() time.Time) DispatchOption {
	return func(s *DispatchService) {
		s.now = now
	}
}

// WithEvents publishes an event for every recorded outcome.
func WithEvents(events EventPublisher) DispatchOption {
	return func(s *DispatchService) {
		s.events = events
	}
}

func WithMetrics(metrics Metrics) DispatchOption {
	return func(s *DispatchService) {
		s.metrics = metrics
	}
}

func NewDispatchService(
	posts PostStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.ScheduleConfig,
	opts ...DispatchOption,
) *DispatchService {
	s := &DispatchService{
		posts:     posts,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "dispatcher"),
		config:    cfg,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// attemptResult is what one claimed post produced inside its transaction.
type attemptResult struct {
	post     domain.ScheduledPost
	outcome  domain.DispatchOutcome
	message  string
	duration time.Duration
	skipped  bool
}

// Dispatch attempts every post due at the current minute. Each post is
// claimed, attempted and updated in its own transaction, so one failure
// never holds back the rest. Only a failure to list due posts is returned.
func (s *DispatchService) Dispatch(ctx context.Context) (*domain.DispatchStats, error) {
	started := s.now()
	now := domain.CanonicalMinute(started)

	due, err := s.posts.SelectDue(ctx, now)
	if err != nil {
		s.recordTick(nil, err)
		return nil, fmt.Errorf("select due: %w", err)
	}

	stats := &domain.DispatchStats{
		Now: now,
		Due: len(due),
	}

	if len(due) > 0 {
		s.logger.Info("dispatching due posts", "count", len(due), "now", domain.FormatCanonical(now))
	}

	for _, candidate := range due {
		if ctx.Err() != nil {
			s.logger.Warn("dispatch interrupted", "error", ctx.Err())
			break
		}

		result, err := s.dispatchOne(ctx, candidate.ID)
		if err != nil {
			stats.Errors++
			s.logger.Error("dispatch post failed", "post_id", candidate.ID, "error", err)
			continue
		}
		if result.skipped {
			stats.Skipped++
			s.logger.Debug("post no longer eligible", "post_id", candidate.ID)
			continue
		}

		switch result.outcome {
		case domain.OutcomePublished:
			stats.Published++
		case domain.OutcomeFailed:
			stats.Failed++
		}
		s.afterCommit(ctx, result, now)
	}

	stats.Duration = s.now().Sub(started)
	s.recordTick(stats, nil)

	if stats.Due > 0 {
		s.logger.Info("dispatch completed",
			"due", stats.Due,
			"published", stats.Published,
			"failed", stats.Failed,
			"skipped", stats.Skipped,
			"errors", stats.Errors,
			"duration", stats.Duration,
		)
	}

	return stats, nil
}

func (s *DispatchService) dispatchOne(ctx context.Context, id int64) (attemptResult, error) {
	var result attemptResult

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		post, err := s.posts.Claim(txCtx, id)
		if errors.Is(err, domain.ErrNotFound) {
			result.skipped = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("claim post: %w", err)
		}
		result.post = *post

		attemptErr := s.attempt(txCtx, *post, &result)

		if attemptErr == nil {
			published, err := s.posts.MarkPublished(txCtx, id)
			if err != nil {
				return fmt.Errorf("mark published: %w", err)
			}
			if !published {
				result.skipped = true
				return nil
			}
			result.outcome = domain.OutcomePublished
			return nil
		}

		result.outcome = domain.OutcomeFailed
		result.message = attemptErr.Error()
		if err := s.posts.MarkFailed(txCtx, id, result.message); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		return nil
	})

	return result, err
}

func (s *DispatchService) attempt(ctx context.Context, post domain.ScheduledPost, result *attemptResult) error {
	attemptCtx := ctx
	if s.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, s.config.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	err := s.publisher.Attempt(attemptCtx, post)
	result.duration = time.Since(start)

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, domain.ErrUnsupportedContentKind) {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "publication attempt failed",
			"post_id", post.ID,
			"content_kind", post.ContentKind,
			"error", err,
		)
	}
	return err
}

// afterCommit reports an outcome that is already durable.
func (s *DispatchService) afterCommit(ctx context.Context, result attemptResult, now time.Time) {
	if s.metrics != nil {
		s.metrics.RecordAttempt(result.outcome, result.duration)
	}

	if s.events == nil {
		return
	}

	event := domain.DispatchEvent{
		PostID:          result.post.ID,
		Outcome:         result.outcome,
		DestinationKind: result.post.DestinationKind,
		DestinationName: result.post.DestinationName,
		ContentKind:     result.post.ContentKind,
		Title:           result.post.Title,
		Error:           result.message,
		ScheduledAt:     result.post.ScheduledAt,
		AttemptedAt:     now,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publish dispatch event failed", "post_id", event.PostID, "error", err)
	}
}

func (s *DispatchService) recordTick(stats *domain.DispatchStats, err error) {
	if s.metrics != nil {
		s.metrics.RecordTick(stats, err)
	}
}
