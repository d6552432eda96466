package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"post_scheduler/internal/domain"
)

const postColumns = `id, target_type, subreddit, title, post_type, content, post_time, posted, last_error, created_at, flair_id`

// postRow mirrors the scheduled_posts table. Timestamps are stored as
// canonical "YYYY-MM-DD HH:MM" UTC strings.
type postRow struct {
	ID         int64          `db:"id"`
	TargetType string         `db:"target_type"`
	Subreddit  sql.NullString `db:"subreddit"`
	Title      string         `db:"title"`
	PostType   string         `db:"post_type"`
	Content    string         `db:"content"`
	PostTime   string         `db:"post_time"`
	Posted     bool           `db:"posted"`
	LastError  sql.NullString `db:"last_error"`
	CreatedAt  string         `db:"created_at"`
	FlairID    sql.NullString `db:"flair_id"`
}

func (r postRow) toDomain() (domain.ScheduledPost, error) {
	scheduledAt, err := domain.ParseCanonical(r.PostTime)
	if err != nil {
		return domain.ScheduledPost{}, fmt.Errorf("post %d: parse post_time %q: %w", r.ID, r.PostTime, err)
	}
	createdAt, err := domain.ParseCanonical(r.CreatedAt)
	if err != nil {
		return domain.ScheduledPost{}, fmt.Errorf("post %d: parse created_at %q: %w", r.ID, r.CreatedAt, err)
	}

	return domain.ScheduledPost{
		ID:              r.ID,
		DestinationKind: domain.DestinationKind(r.TargetType),
		DestinationName: r.Subreddit.String,
		Title:           r.Title,
		ContentKind:     domain.ContentKind(r.PostType),
		Content:         r.Content,
		ScheduledAt:     scheduledAt,
		Published:       r.Posted,
		LastError:       nullableString(r.LastError),
		CreatedAt:       createdAt,
		FlairID:         nullableString(r.FlairID),
	}, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type PostStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db, now: time.Now}
}

// Create inserts a new unpublished post and returns its id.
func (s *PostStore) Create(ctx context.Context, post *domain.ScheduledPost) (int64, error) {
	if err := post.Validate(); err != nil {
		return 0, err
	}
	if post.Published || post.LastError != nil {
		return 0, domain.NewValidationError("posted", "new posts must be unpublished")
	}

	subreddit := sql.NullString{}
	if post.DestinationKind == domain.DestinationSubreddit {
		subreddit = sql.NullString{String: post.DestinationName, Valid: true}
	}

	createdAt := domain.CanonicalMinute(s.now())

	query := `
		INSERT INTO scheduled_posts (
			target_type, subreddit, title, post_type, content,
			post_time, posted, last_error, created_at, flair_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, FALSE, NULL, $7, $8
		)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		string(post.DestinationKind),
		subreddit,
		post.Title,
		string(post.ContentKind),
		post.Content,
		domain.FormatCanonical(post.ScheduledAt),
		createdAt.Format(domain.CanonicalLayout),
		toNullString(post.FlairID),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	post.ID = id
	post.CreatedAt = createdAt
	return id, nil
}

// Get returns a single post or domain.ErrNotFound.
func (s *PostStore) Get(ctx context.Context, id int64) (*domain.ScheduledPost, error) {
	var row postRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row,
		`SELECT `+postColumns+` FROM scheduled_posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}

	post, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListAll returns every post ordered by scheduled time.
func (s *PostStore) ListAll(ctx context.Context) ([]domain.ScheduledPost, error) {
	return s.selectPosts(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts ORDER BY post_time, id`)
}

// SelectDue returns unpublished posts scheduled at or before now.
func (s *PostStore) SelectDue(ctx context.Context, now time.Time) ([]domain.ScheduledPost, error) {
	return s.selectPosts(ctx,
		`SELECT `+postColumns+` FROM scheduled_posts
		WHERE post_time <= $1 AND posted = FALSE
		ORDER BY post_time, id`,
		domain.FormatCanonical(now),
	)
}

// Claim locks an unpublished post for the surrounding transaction. Rows that
// are gone, already published or locked by another attempt yield
// domain.ErrNotFound.
func (s *PostStore) Claim(ctx context.Context, id int64) (*domain.ScheduledPost, error) {
	if GetTxFromContext(ctx) == nil {
		return nil, errors.New("claim requires a transaction")
	}

	var row postRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row,
		`SELECT `+postColumns+` FROM scheduled_posts
		WHERE id = $1 AND posted = FALSE
		FOR UPDATE SKIP LOCKED`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("claim post %d: %w", id, err)
	}

	post, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// MarkPublished flags the post as published and clears its error. It reports
// whether this call performed the transition; repeating it is a no-op.
func (s *PostStore) MarkPublished(ctx context.Context, id int64) (bool, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE scheduled_posts SET posted = TRUE, last_error = NULL
		WHERE id = $1 AND posted = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("mark post %d published: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark post %d published: %w", id, err)
	}
	return n == 1, nil
}

// MarkFailed records the last attempt error on an unpublished post.
func (s *PostStore) MarkFailed(ctx context.Context, id int64, message string) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE scheduled_posts SET last_error = $2
		WHERE id = $1 AND posted = FALSE`, id, message)
	if err != nil {
		return fmt.Errorf("mark post %d failed: %w", id, err)
	}
	return nil
}

// Delete removes the post and reports whether it existed.
func (s *PostStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM scheduled_posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *PostStore) selectPosts(ctx context.Context, query string, args ...interface{}) ([]domain.ScheduledPost, error) {
	var rows []postRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}

	posts := make([]domain.ScheduledPost, 0, len(rows))
	for _, row := range rows {
		post, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
