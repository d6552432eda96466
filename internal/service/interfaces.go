package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"
	"time"

	"post_scheduler/internal/domain"
)

type PostStore interface {
	Create(ctx context.Context, post *domain.ScheduledPost) (int64, error)
	ListAll(ctx context.Context) ([]domain.ScheduledPost, error)
	SelectDue(ctx context.Context, now time.Time) ([]domain.ScheduledPost, error)
	Claim(ctx context.Context, id int64) (*domain.ScheduledPost, error)
	MarkPublished(ctx context.Context, id int64) (bool, error)
	MarkFailed(ctx context.Context, id int64, message string) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Attempt(ctx context.Context, post domain.ScheduledPost) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.DispatchEvent) error
}

type Metrics interface {
	RecordAttempt(outcome domain.DispatchOutcome, duration time.Duration)
	RecordTick(stats *domain.DispatchStats, err error)
}

type BlobStore interface {
	Save(ctx context.Context, ref string, r io.Reader) error
	Exists(ctx context.Context, ref string) (bool, error)
}

type FlairSource interface {
	LinkFlairs(ctx context.Context, subreddit string) ([]domain.Flair, error)
}
