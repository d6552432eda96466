// Package app wires the scheduler's components from configuration and owns
// their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"post_scheduler/internal/api"
	"post_scheduler/internal/blob"
	"post_scheduler/internal/config"
	"post_scheduler/internal/domain"
	"post_scheduler/internal/events"
	"post_scheduler/internal/metrics"
	"post_scheduler/internal/publisher"
	"post_scheduler/internal/reddit"
	"post_scheduler/internal/scheduler"
	"post_scheduler/internal/service"
	"post_scheduler/internal/storage/postgres"
)

const metricsNamespace = "post_scheduler"

// App holds every long-lived component of the process.
type App struct {
	config *config.Config
	logger *slog.Logger

	db       *sqlx.DB
	events   *events.RabbitMQ
	reddit   *reddit.Client
	blobs    blob.Store
	registry *prometheus.Registry

	dispatcher *service.DispatchService
	intake     *service.IntakeService
	scheduler  *scheduler.Scheduler
	server     *api.Server
}

// New connects to the database, applies migrations, verifies the Reddit
// credentials and builds the services. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{config: cfg, logger: logger}

	if err := a.initialize(ctx); err != nil {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("cleanup after failed start", "error", closeErr)
		}
		return nil, err
	}
	return a, nil
}

func (a *App) initialize(ctx context.Context) error {
	cfg := a.config

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}

	a.db, err = sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.logger.Info("connected to database")

	if err := postgres.Migrate(ctx, a.db, a.logger); err != nil {
		return err
	}

	a.reddit = NewRedditClient(cfg.Reddit, a.logger)
	if err := a.reddit.Verify(ctx); err != nil {
		return fmt.Errorf("verify reddit credentials: %w", err)
	}
	a.logger.Info("reddit credentials verified", "username", cfg.Reddit.Username)

	a.blobs, err = NewBlobStore(ctx, cfg.Uploads)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	posts := postgres.NewPostStore(a.db)
	txManager := postgres.NewTransactionManager(a.db)

	opts := []service.DispatchOption{
		service.WithMetrics(metrics.NewDispatch(metricsNamespace, a.registry)),
	}
	if cfg.Events.Enabled {
		a.events, err = events.NewRabbitMQ(events.Config{
			URL:        cfg.Events.URL,
			Exchange:   cfg.Events.Exchange,
			RoutingKey: cfg.Events.RoutingKey,
			QueueName:  cfg.Events.QueueName,
		}, a.logger)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		opts = append(opts, service.WithEvents(a.events))
	}

	a.dispatcher = service.NewDispatchService(
		posts,
		txManager,
		publisher.New(a.reddit, a.blobs, a.logger),
		a.logger,
		cfg.Schedule,
		opts...,
	)

	a.intake = service.NewIntakeService(posts, a.blobs, a.reddit, a.logger, service.IntakeConfig{
		Location:          loc,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
		MaxUploadBytes:    cfg.Uploads.MaxBytes(),
	})

	a.scheduler = scheduler.NewScheduler(a.dispatcher, cfg.Schedule.Interval, cfg.Schedule.TickTimeout, a.logger)

	handler := api.NewHandler(a.intake, a.blobs, a.db.PingContext, cfg.Uploads.MaxBytes(), a.logger)
	metricsHandler := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry})
	a.server = api.NewServer(cfg.HTTP, api.NewRouter(handler, metricsHandler), a.logger)

	return nil
}

// Run serves the HTTP surface and runs the dispatch loop until ctx is done
// or either of them fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting post scheduler",
		"addr", a.config.HTTP.Addr,
		"interval", a.config.Schedule.Interval,
		"timezone", a.config.Schedule.Timezone,
		"uploads_backend", a.config.Uploads.Backend,
		"events_enabled", a.config.Events.Enabled,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.scheduler.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return a.server.Run(gctx)
	})
	return g.Wait()
}

// DispatchOnce runs a single dispatch pass.
func (a *App) DispatchOnce(ctx context.Context) (*domain.DispatchStats, error) {
	return a.dispatcher.Dispatch(ctx)
}

// Close releases the event connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func NewRedditClient(cfg config.RedditConfig, logger *slog.Logger) *reddit.Client {
	return reddit.New(reddit.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		Username:       cfg.Username,
		Password:       cfg.Password,
		UserAgent:      cfg.UserAgent,
		BaseURL:        cfg.APIBaseURL,
		TokenURL:       cfg.TokenURL,
		Timeout:        cfg.Timeout,
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
	}, logger)
}

// NewBlobStore builds the configured upload backend.
func NewBlobStore(ctx context.Context, cfg config.UploadsConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "s3":
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
			MaxSize:         cfg.MaxBytes(),
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 blob store: %w", err)
		}
		return store, nil
	case "local", "":
		store, err := blob.NewLocalStore(cfg.Dir, cfg.MaxBytes())
		if err != nil {
			return nil, fmt.Errorf("create local blob store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown uploads backend %q", cfg.Backend)
	}
}
