package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"post_scheduler/internal/blob"
	"post_scheduler/internal/domain"
	"post_scheduler/internal/service/mocks"
)

type IntakeServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	posts  *mocks.MockPostStore
	blobs  *mocks.MockBlobStore
	flairs *mocks.MockFlairSource

	service *IntakeService
	chicago *time.Location
}

func (s *IntakeServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.posts = mocks.NewMockPostStore(s.ctrl)
	s.blobs = mocks.NewMockBlobStore(s.ctrl)
	s.flairs = mocks.NewMockFlairSource(s.ctrl)

	var err error
	s.chicago, err = time.LoadLocation("America/Chicago")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.service = NewIntakeService(s.posts, s.blobs, s.flairs, logger, IntakeConfig{
		Location:          s.chicago,
		AllowedExtensions: []string{"png", "jpg", "jpeg"},
		MaxUploadBytes:    1024,
	})
	s.service.now = func() time.Time { return time.Unix(1714560000, 0) }
}

func (s *IntakeServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestIntakeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IntakeServiceTestSuite))
}

func validText() SubmitRequest {
	return SubmitRequest{
		Title:      "  Hello world  ",
		PostType:   "text",
		TargetType: "subreddit",
		Subreddit:  " golang ",
		Content:    " body ",
		PostTime:   "2025-01-15T09:30",
		FlairID:    "flair-1",
	}
}

func (s *IntakeServiceTestSuite) requireValidation(err error, field, message string) {
	s.T().Helper()
	var vErr *domain.ValidationError
	s.Require().ErrorAs(err, &vErr)
	s.Equal(field, vErr.Field)
	s.Equal(message, vErr.Message)
}

func (s *IntakeServiceTestSuite) TestSubmit_NormalizesAndStores() {
	ctx := context.Background()

	s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
			s.Equal("Hello world", p.Title)
			s.Equal(domain.ContentText, p.ContentKind)
			s.Equal(domain.DestinationSubreddit, p.DestinationKind)
			s.Equal("golang", p.DestinationName)
			s.Equal("body", p.Content)
			s.Require().NotNil(p.FlairID)
			s.Equal("flair-1", *p.FlairID)
			// 09:30 CST is 15:30 UTC.
			s.Equal("2025-01-15 15:30", domain.FormatCanonical(p.ScheduledAt))
			s.True(domain.IsCanonical(p.ScheduledAt))
			s.False(p.Published)
			s.Nil(p.LastError)
			return 42, nil
		},
	)

	id, err := s.service.Submit(ctx, validText())

	s.NoError(err)
	s.Equal(int64(42), id)
}

func (s *IntakeServiceTestSuite) TestSubmit_RoundTripsLocalMinute() {
	ctx := context.Background()
	inputs := []string{"2025-03-09T01:59", "2025-07-04T23:45", "2025-11-02T12:00", "2025-12-31T00:00"}

	for _, in := range inputs {
		req := validText()
		req.PostTime = in
		s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
				s.Equal(strings.Replace(in, "T", " ", 1), domain.FormatLocal(p.ScheduledAt, s.chicago))
				return 1, nil
			},
		)
		_, err := s.service.Submit(ctx, req)
		s.NoError(err, in)
	}
}

func (s *IntakeServiceTestSuite) TestSubmit_StripsSubredditPrefix() {
	ctx := context.Background()
	for _, name := range []string{"r/golang", "/r/golang", "golang/"} {
		req := validText()
		req.Subreddit = name
		s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
				s.Equal("golang", p.DestinationName, name)
				return 1, nil
			},
		)
		_, err := s.service.Submit(ctx, req)
		s.NoError(err)
	}
}

func (s *IntakeServiceTestSuite) TestSubmit_DefaultsToSubreddit() {
	ctx := context.Background()
	req := validText()
	req.TargetType = ""

	s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
			s.Equal(domain.DestinationSubreddit, p.DestinationKind)
			return 1, nil
		},
	)

	_, err := s.service.Submit(ctx, req)
	s.NoError(err)
}

func (s *IntakeServiceTestSuite) TestSubmit_ProfileIgnoresSubredditAndFlair() {
	ctx := context.Background()
	req := validText()
	req.TargetType = "profile"
	req.Subreddit = "should_be_dropped"
	req.FlairID = "flair-x"

	s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
			s.Equal(domain.DestinationProfile, p.DestinationKind)
			s.Empty(p.DestinationName)
			s.Nil(p.FlairID)
			s.NoError(p.Validate())
			return 5, nil
		},
	)

	id, err := s.service.Submit(ctx, req)
	s.NoError(err)
	s.Equal(int64(5), id)
}

func (s *IntakeServiceTestSuite) TestSubmit_Rejections() {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*SubmitRequest)
		field   string
		message string
	}{
		{"empty title", func(r *SubmitRequest) { r.Title = "   " }, "title", "title is required"},
		{"unknown post type", func(r *SubmitRequest) { r.PostType = "video" }, "post_type", "invalid post type"},
		{"empty post type", func(r *SubmitRequest) { r.PostType = "" }, "post_type", "invalid post type"},
		{"unknown target", func(r *SubmitRequest) { r.TargetType = "group" }, "target_type", "invalid target type"},
		{"missing subreddit", func(r *SubmitRequest) { r.Subreddit = " " }, "subreddit", "subreddit is required for subreddit posts"},
		{"bare r/ prefix", func(r *SubmitRequest) { r.Subreddit = "r/" }, "subreddit", "subreddit is required for subreddit posts"},
		{"missing post time", func(r *SubmitRequest) { r.PostTime = "" }, "post_time", "post time is required"},
		{"malformed post time", func(r *SubmitRequest) { r.PostTime = "tomorrow at noon" }, "post_time", "invalid date/time format"},
		{"impossible date", func(r *SubmitRequest) { r.PostTime = "2025-02-30T10:00" }, "post_time", "invalid date/time format"},
		{"empty text content", func(r *SubmitRequest) { r.Content = "  " }, "content", "content cannot be empty"},
		{"empty link content", func(r *SubmitRequest) { r.PostType = "link"; r.Content = "" }, "content", "content cannot be empty"},
		{"missing image", func(r *SubmitRequest) { r.PostType = "image"; r.ImageRef = "" }, "image_file", "image file required"},
		{"disallowed image extension", func(r *SubmitRequest) { r.PostType = "image"; r.ImageRef = "1_abc_cat.gif" }, "image_file", "invalid image format"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := validText()
			tt.mutate(&req)

			id, err := s.service.Submit(ctx, req)

			s.Zero(id)
			s.requireValidation(err, tt.field, tt.message)
		})
	}
}

func (s *IntakeServiceTestSuite) TestSubmit_ImageMustExist() {
	ctx := context.Background()
	req := validText()
	req.PostType = "image"
	req.ImageRef = "1_abc_cat.png"

	s.blobs.EXPECT().Exists(ctx, "1_abc_cat.png").Return(false, nil)

	_, err := s.service.Submit(ctx, req)
	s.requireValidation(err, "image_file", "image file not found")
}

func (s *IntakeServiceTestSuite) TestSubmit_ImageRefTraversalIsNotFound() {
	ctx := context.Background()
	req := validText()
	req.PostType = "image"
	req.ImageRef = "../secret.png"

	s.blobs.EXPECT().Exists(ctx, "../secret.png").Return(false, fmt.Errorf("%w: %q", blob.ErrInvalidRef, "../secret.png"))

	_, err := s.service.Submit(ctx, req)
	s.requireValidation(err, "image_file", "image file not found")
}

func (s *IntakeServiceTestSuite) TestSubmit_ImageStored() {
	ctx := context.Background()
	req := validText()
	req.PostType = "image"
	req.ImageRef = "1_abc_cat.JPG"
	req.Content = "ignored"

	s.blobs.EXPECT().Exists(ctx, "1_abc_cat.JPG").Return(true, nil)
	s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
			s.Equal(domain.ContentImage, p.ContentKind)
			s.Equal("1_abc_cat.JPG", p.Content)
			return 3, nil
		},
	)

	id, err := s.service.Submit(ctx, req)
	s.NoError(err)
	s.Equal(int64(3), id)
}

func (s *IntakeServiceTestSuite) TestSubmit_BlobStoreErrorIsNotValidation() {
	ctx := context.Background()
	req := validText()
	req.PostType = "image"
	req.ImageRef = "1_abc_cat.png"

	s.blobs.EXPECT().Exists(ctx, "1_abc_cat.png").Return(false, errors.New("s3 unavailable"))

	_, err := s.service.Submit(ctx, req)
	s.Require().Error(err)
	var vErr *domain.ValidationError
	s.False(errors.As(err, &vErr))
}

func (s *IntakeServiceTestSuite) TestSubmit_StoreErrorIsWrapped() {
	ctx := context.Background()
	s.posts.EXPECT().Create(ctx, gomock.Any()).Return(int64(0), errors.New("db down"))

	_, err := s.service.Submit(ctx, validText())
	s.ErrorContains(err, "create post: db down")
}

func (s *IntakeServiceTestSuite) TestList_RendersLocalTime() {
	ctx := context.Background()
	msg := "rate limited"
	s.posts.EXPECT().ListAll(ctx).Return([]domain.ScheduledPost{
		{
			ID:              1,
			DestinationKind: domain.DestinationSubreddit,
			DestinationName: "golang",
			Title:           "a",
			ContentKind:     domain.ContentLink,
			Content:         "https://go.dev",
			ScheduledAt:     time.Date(2025, 7, 1, 17, 0, 0, 0, time.UTC),
			LastError:       &msg,
			CreatedAt:       time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
		},
	}, nil)

	views, err := s.service.List(ctx)

	s.NoError(err)
	s.Require().Len(views, 1)
	s.Equal("2025-07-01 17:00", views[0].PostTime)
	s.Equal("2025-07-01 12:00", views[0].PostTimeLocal)
	s.Equal("subreddit", views[0].TargetType)
	s.Equal("link", views[0].PostType)
	s.Equal(&msg, views[0].LastError)
	s.Equal("2025-06-30 12:00", views[0].CreatedAt)
}

func (s *IntakeServiceTestSuite) TestDelete() {
	ctx := context.Background()
	s.posts.EXPECT().Delete(ctx, int64(4)).Return(true, nil)
	s.posts.EXPECT().Delete(ctx, int64(5)).Return(false, nil)

	existed, err := s.service.Delete(ctx, 4)
	s.NoError(err)
	s.True(existed)

	existed, err = s.service.Delete(ctx, 5)
	s.NoError(err)
	s.False(existed)
}

func (s *IntakeServiceTestSuite) TestFlairs() {
	ctx := context.Background()
	want := []domain.Flair{{ID: "f1", Text: "News"}}
	s.flairs.EXPECT().LinkFlairs(ctx, "golang").Return(want, nil)

	s.Equal(want, s.service.Flairs(ctx, "r/golang"))
}

func (s *IntakeServiceTestSuite) TestFlairs_EmptyOnFailure() {
	ctx := context.Background()
	s.flairs.EXPECT().LinkFlairs(ctx, "private").Return(nil, errors.New("403"))
	s.flairs.EXPECT().LinkFlairs(ctx, "noflair").Return(nil, nil)

	s.Equal([]domain.Flair{}, s.service.Flairs(ctx, "private"))
	s.Equal([]domain.Flair{}, s.service.Flairs(ctx, "noflair"))
	s.Equal([]domain.Flair{}, s.service.Flairs(ctx, "  "))
}

func (s *IntakeServiceTestSuite) TestUpload() {
	ctx := context.Background()
	var saved string
	s.blobs.EXPECT().Save(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ref string, _ any) error {
			saved = ref
			return nil
		},
	)

	ref, err := s.service.Upload(ctx, "My Cat.PNG", 10, strings.NewReader("0123456789"))

	s.NoError(err)
	s.Equal(saved, ref)
	s.Regexp(`^1714560000_[0-9a-f]{8}_My_Cat\.PNG$`, ref)
}

func (s *IntakeServiceTestSuite) TestUpload_NonASCIINameCanBeScheduled() {
	ctx := context.Background()
	s.blobs.EXPECT().Save(ctx, gomock.Any(), gomock.Any()).Return(nil)

	ref, err := s.service.Upload(ctx, "写真.jpg", 10, strings.NewReader("0123456789"))
	s.Require().NoError(err)
	s.Regexp(`^1714560000_[0-9a-f]{8}_unnamed\.jpg$`, ref)

	req := validText()
	req.PostType = "image"
	req.ImageRef = ref

	s.blobs.EXPECT().Exists(ctx, ref).Return(true, nil)
	s.posts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.ScheduledPost) (int64, error) {
			s.Equal(ref, p.Content)
			return 8, nil
		},
	)

	id, err := s.service.Submit(ctx, req)
	s.NoError(err)
	s.Equal(int64(8), id)
}

func (s *IntakeServiceTestSuite) TestUpload_Rejections() {
	ctx := context.Background()

	_, err := s.service.Upload(ctx, "", 1, strings.NewReader("x"))
	s.requireValidation(err, "image_file", "image file required")

	_, err = s.service.Upload(ctx, "evil.exe", 1, strings.NewReader("x"))
	s.requireValidation(err, "image_file", "invalid image format")

	_, err = s.service.Upload(ctx, "big.png", 2048, strings.NewReader("x"))
	s.requireValidation(err, "image_file", "image file too large")
}

func (s *IntakeServiceTestSuite) TestUpload_TooLargeWhileStreaming() {
	ctx := context.Background()
	s.blobs.EXPECT().Save(ctx, gomock.Any(), gomock.Any()).Return(blob.ErrTooLarge)

	_, err := s.service.Upload(ctx, "big.png", -1, strings.NewReader("x"))
	s.requireValidation(err, "image_file", "image file too large")
}
