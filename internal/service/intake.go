package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"post_scheduler/internal/blob"
	"post_scheduler/internal/domain"
)

// SubmitRequest is a raw request to schedule a post. Fields are trimmed
// before validation.
type SubmitRequest struct {
	Title      string `json:"title"`
	PostType   string `json:"post_type"`
	TargetType string `json:"target_type"`
	Subreddit  string `json:"subreddit"`
	Content    string `json:"content"`
	ImageRef   string `json:"image_ref"`
	PostTime   string `json:"post_time"` // local time in the application zone
	FlairID    string `json:"flair_id"`
}

// PostView is a scheduled post as shown to operators.
type PostView struct {
	ID            int64   `json:"id"`
	TargetType    string  `json:"target_type"`
	Subreddit     string  `json:"subreddit,omitempty"`
	Title         string  `json:"title"`
	PostType      string  `json:"post_type"`
	Content       string  `json:"content"`
	PostTime      string  `json:"post_time"`       // UTC
	PostTimeLocal string  `json:"post_time_local"` // application zone
	Posted        bool    `json:"posted"`
	LastError     *string `json:"last_error"`
	CreatedAt     string  `json:"created_at"`
	FlairID       *string `json:"flair_id,omitempty"`
}

type IntakeConfig struct {
	Location          *time.Location
	AllowedExtensions []string
	MaxUploadBytes    int64
}

type IntakeService struct {
	posts  PostStore
	blobs  BlobStore
	flairs FlairSource
	logger *slog.Logger
	config IntakeConfig
	now    func() time.Time
}

func NewIntakeService(
	posts PostStore,
	blobs BlobStore,
	flairs FlairSource,
	logger *slog.Logger,
	cfg IntakeConfig,
) *IntakeService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &IntakeService{
		posts:  posts,
		blobs:  blobs,
		flairs: flairs,
		logger: logger.With("component", "intake"),
		config: cfg,
		now:    time.Now,
	}
}

// Submit validates req, normalizes it and stores a new scheduled post.
// Rejections are returned as *domain.ValidationError and nothing is stored.
func (s *IntakeService) Submit(ctx context.Context, req SubmitRequest) (int64, error) {
	post, err := s.normalize(ctx, req)
	if err != nil {
		return 0, err
	}

	id, err := s.posts.Create(ctx, post)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return 0, vErr
		}
		return 0, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info("post scheduled",
		"post_id", id,
		"destination_kind", post.DestinationKind,
		"destination", post.DestinationName,
		"content_kind", post.ContentKind,
		"post_time", domain.FormatCanonical(post.ScheduledAt),
	)

	return id, nil
}

func (s *IntakeService) normalize(ctx context.Context, req SubmitRequest) (*domain.ScheduledPost, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}

	kind := domain.ContentKind(strings.TrimSpace(req.PostType))
	if !kind.Valid() {
		return nil, domain.NewValidationError("post_type", "invalid post type")
	}

	target := domain.DestinationKind(strings.TrimSpace(req.TargetType))
	if target == "" {
		target = domain.DestinationSubreddit
	}
	if !target.Valid() {
		return nil, domain.NewValidationError("target_type", "invalid target type")
	}

	post := &domain.ScheduledPost{
		DestinationKind: target,
		Title:           title,
		ContentKind:     kind,
	}

	// Profile posts never carry a subreddit or flair.
	if target == domain.DestinationSubreddit {
		name := normalizeSubreddit(req.Subreddit)
		if name == "" {
			return nil, domain.NewValidationError("subreddit", "subreddit is required for subreddit posts")
		}
		post.DestinationName = name
		if flair := strings.TrimSpace(req.FlairID); flair != "" {
			post.FlairID = &flair
		}
	}

	postTime := strings.TrimSpace(req.PostTime)
	if postTime == "" {
		return nil, domain.NewValidationError("post_time", "post time is required")
	}
	scheduledAt, err := domain.ToCanonical(postTime, s.config.Location)
	if err != nil {
		return nil, domain.NewValidationError("post_time", "invalid date/time format")
	}
	post.ScheduledAt = scheduledAt

	switch kind {
	case domain.ContentLink, domain.ContentText:
		content := strings.TrimSpace(req.Content)
		if content == "" {
			return nil, domain.NewValidationError("content", "content cannot be empty")
		}
		post.Content = content
	case domain.ContentImage:
		ref, err := s.checkImage(ctx, strings.TrimSpace(req.ImageRef))
		if err != nil {
			return nil, err
		}
		post.Content = ref
	}

	return post, nil
}

func (s *IntakeService) checkImage(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", domain.NewValidationError("image_file", "image file required")
	}
	if err := blob.CheckExtension(ref, s.config.AllowedExtensions); err != nil {
		return "", domain.NewValidationError("image_file", "invalid image format")
	}

	exists, err := s.blobs.Exists(ctx, ref)
	if errors.Is(err, blob.ErrInvalidRef) {
		return "", domain.NewValidationError("image_file", "image file not found")
	}
	if err != nil {
		return "", fmt.Errorf("check image %s: %w", ref, err)
	}
	if !exists {
		return "", domain.NewValidationError("image_file", "image file not found")
	}
	return ref, nil
}

func normalizeSubreddit(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	return strings.Trim(name, "/ ")
}

// List returns every post ordered by scheduled time.
func (s *IntakeService) List(ctx context.Context) ([]PostView, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, PostView{
			ID:            p.ID,
			TargetType:    string(p.DestinationKind),
			Subreddit:     p.DestinationName,
			Title:         p.Title,
			PostType:      string(p.ContentKind),
			Content:       p.Content,
			PostTime:      domain.FormatCanonical(p.ScheduledAt),
			PostTimeLocal: domain.FormatLocal(p.ScheduledAt, s.config.Location),
			Posted:        p.Published,
			LastError:     p.LastError,
			CreatedAt:     domain.FormatCanonical(p.CreatedAt),
			FlairID:       p.FlairID,
		})
	}
	return views, nil
}

// Delete removes a post whatever its state. It reports whether the post
// existed.
func (s *IntakeService) Delete(ctx context.Context, id int64) (bool, error) {
	existed, err := s.posts.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete post %d: %w", id, err)
	}
	if existed {
		s.logger.Info("post deleted", "post_id", id)
	}
	return existed, nil
}

// Flairs lists the link flairs of subreddit. Lookup failures are logged and
// reported as an empty list.
func (s *IntakeService) Flairs(ctx context.Context, subreddit string) []domain.Flair {
	name := normalizeSubreddit(subreddit)
	if name == "" {
		return []domain.Flair{}
	}

	flairs, err := s.flairs.LinkFlairs(ctx, name)
	if err != nil {
		s.logger.Warn("flair lookup failed", "subreddit", name, "error", err)
		return []domain.Flair{}
	}
	if flairs == nil {
		return []domain.Flair{}
	}
	return flairs
}

// Upload stores an image for a later Submit and returns its reference.
// size is the length announced by the client, or -1 if unknown.
func (s *IntakeService) Upload(ctx context.Context, filename string, size int64, body io.Reader) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", domain.NewValidationError("image_file", "image file required")
	}
	if err := blob.CheckExtension(filename, s.config.AllowedExtensions); err != nil {
		return "", domain.NewValidationError("image_file", "invalid image format")
	}
	if s.config.MaxUploadBytes > 0 && size > s.config.MaxUploadBytes {
		return "", domain.NewValidationError("image_file", "image file too large")
	}

	ref := blob.NewRef(filename, s.now())
	if err := s.blobs.Save(ctx, ref, body); err != nil {
		if errors.Is(err, blob.ErrTooLarge) {
			return "", domain.NewValidationError("image_file", "image file too large")
		}
		return "", fmt.Errorf("save image: %w", err)
	}

	s.logger.Info("image uploaded", "ref", ref, "size", size)
	return ref, nil
}
