// Package publisher turns one scheduled post into exactly one platform
// submission.
package publisher

//go:generate mockgen -source=publisher.go -destination=mocks/platform.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"

	"post_scheduler/internal/blob"
	"post_scheduler/internal/domain"
	"post_scheduler/internal/reddit"
)

// Platform is the set of submission capabilities the publisher needs.
type Platform interface {
	SubmitLinkToSubreddit(ctx context.Context, subreddit, title, link, flairID string) error
	SubmitTextToSubreddit(ctx context.Context, subreddit, title, body, flairID string) error
	SubmitImageToSubreddit(ctx context.Context, subreddit, title string, image reddit.Image, flairID string) error
	SubmitLinkToProfile(ctx context.Context, title, link string) error
	SubmitTextToProfile(ctx context.Context, title, body string) error
	SubmitImageToProfile(ctx context.Context, title string, image reddit.Image) error
}

type route struct {
	content     domain.ContentKind
	destination domain.DestinationKind
}

type submitFunc func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error

type Publisher struct {
	platform Platform
	blobs    blob.Store
	routes   map[route]submitFunc
	logger   *slog.Logger
}

// New creates a publisher. It panics if any content kind and destination
// kind combination has no route.
func New(platform Platform, blobs blob.Store, logger *slog.Logger) *Publisher {
	routes := defaultRoutes()
	if err := checkRoutes(routes); err != nil {
		panic(err)
	}

	return &Publisher{
		platform: platform,
		blobs:    blobs,
		routes:   routes,
		logger:   logger.With("component", "publisher"),
	}
}

func defaultRoutes() map[route]submitFunc {
	return map[route]submitFunc{
		{domain.ContentLink, domain.DestinationSubreddit}: func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error {
			return p.platform.SubmitLinkToSubreddit(ctx, post.DestinationName, post.Title, post.Content, flair(post))
		},
		{domain.ContentText, domain.DestinationSubreddit}: func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error {
			return p.platform.SubmitTextToSubreddit(ctx, post.DestinationName, post.Title, post.Content, flair(post))
		},
		{domain.ContentImage, domain.DestinationSubreddit}: func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error {
			return p.withImage(ctx, post, func(img reddit.Image) error {
				return p.platform.SubmitImageToSubreddit(ctx, post.DestinationName, post.Title, img, flair(post))
			})
		},
		{domain.ContentLink, domain.DestinationProfile}: func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error {
			return p.platform.SubmitLinkToProfile(ctx, post.Title, post.Content)
		},
		{domain.ContentText, domain.DestinationProfile}: func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error {
			return p.platform.SubmitTextToProfile(ctx, post.Title, post.Content)
		},
		{domain.ContentImage, domain.DestinationProfile}: func(ctx context.Context, p *Publisher, post domain.ScheduledPost) error {
			return p.withImage(ctx, post, func(img reddit.Image) error {
				return p.platform.SubmitImageToProfile(ctx, post.Title, img)
			})
		},
	}
}

func checkRoutes(routes map[route]submitFunc) error {
	var missing []error
	for _, c := range domain.ContentKinds() {
		for _, d := range domain.DestinationKinds() {
			if _, ok := routes[route{c, d}]; !ok {
				missing = append(missing, fmt.Errorf("publisher: no route for %s post to %s", c, d))
			}
		}
	}
	return errors.Join(missing...)
}

// Attempt makes one submission for post. Platform failures are returned as
// *domain.PublishError carrying the platform message unchanged.
func (p *Publisher) Attempt(ctx context.Context, post domain.ScheduledPost) error {
	if !post.ContentKind.Valid() {
		return domain.UnsupportedContentKind(post.ContentKind)
	}

	submit, ok := p.routes[route{post.ContentKind, post.DestinationKind}]
	if !ok {
		return fmt.Errorf("unsupported destination kind %q", string(post.DestinationKind))
	}

	if err := submit(ctx, p, post); err != nil {
		var imgErr *imageError
		if errors.As(err, &imgErr) {
			return imgErr.err
		}
		return domain.NewPublishError(err)
	}

	p.logger.Info("post submitted",
		"post_id", post.ID,
		"content_kind", post.ContentKind,
		"destination_kind", post.DestinationKind,
		"destination", post.DestinationName,
	)
	return nil
}

// imageError marks a failure to read the image blob, as opposed to a
// platform failure.
type imageError struct{ err error }

func (e *imageError) Error() string { return e.err.Error() }

func (p *Publisher) withImage(ctx context.Context, post domain.ScheduledPost, fn func(reddit.Image) error) error {
	rc, err := p.blobs.Open(ctx, post.Content)
	if err != nil {
		return &imageError{err: fmt.Errorf("open image %s: %w", post.Content, err)}
	}
	defer rc.Close()

	return fn(reddit.Image{
		Filename: post.Content,
		MIMEType: mimeType(post.Content),
		Body:     rc,
	})
}

func mimeType(name string) string {
	if t := mime.TypeByExtension("." + blob.Extension(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func flair(post domain.ScheduledPost) string {
	if post.FlairID == nil {
		return ""
	}
	return *post.FlairID
}
