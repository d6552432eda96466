package domain

import (
	"fmt"
	"strings"
	"time"
)

type DestinationKind string

const (
	DestinationSubreddit DestinationKind = "subreddit"
	DestinationProfile   DestinationKind = "profile"
)

// DestinationKinds lists every supported destination kind.
func DestinationKinds() []DestinationKind {
	return []DestinationKind{DestinationSubreddit, DestinationProfile}
}

func (k DestinationKind) Valid() bool {
	switch k {
	case DestinationSubreddit, DestinationProfile:
		return true
	}
	return false
}

type ContentKind string

const (
	ContentLink  ContentKind = "link"
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
)

// ContentKinds lists every supported content kind. Code that branches on
// content kind is checked against this list.
func ContentKinds() []ContentKind {
	return []ContentKind{ContentLink, ContentText, ContentImage}
}

func (k ContentKind) Valid() bool {
	switch k {
	case ContentLink, ContentText, ContentImage:
		return true
	}
	return false
}

// ScheduledPost is a queued submission waiting for its publication time.
type ScheduledPost struct {
	ID              int64
	DestinationKind DestinationKind
	DestinationName string // subreddit name, empty for profile posts
	Title           string
	ContentKind     ContentKind
	Content         string // URL, body text, or blob reference
	ScheduledAt     time.Time
	Published       bool
	LastError       *string
	CreatedAt       time.Time
	FlairID         *string
}

// Validate checks the record-level invariants. It does not check that an
// image blob exists; that is the intake's job.
func (p ScheduledPost) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if !p.ContentKind.Valid() {
		return NewValidationError("post_type", "invalid post type")
	}
	switch p.DestinationKind {
	case DestinationSubreddit:
		if strings.TrimSpace(p.DestinationName) == "" {
			return NewValidationError("subreddit", "subreddit is required for subreddit posts")
		}
	case DestinationProfile:
		if p.DestinationName != "" {
			return NewValidationError("subreddit", "profile posts cannot name a subreddit")
		}
	default:
		return NewValidationError("target_type", "invalid target type")
	}
	if strings.TrimSpace(p.Content) == "" {
		if p.ContentKind == ContentImage {
			return NewValidationError("image_file", "image file required")
		}
		return NewValidationError("content", "content cannot be empty")
	}
	if p.ScheduledAt.IsZero() {
		return NewValidationError("post_time", "post time is required")
	}
	if !IsCanonical(p.ScheduledAt) {
		return NewValidationError("post_time", fmt.Sprintf("post time %s is not in canonical form", p.ScheduledAt))
	}
	if p.Published && p.LastError != nil {
		return NewValidationError("last_error", "published post cannot carry an error")
	}
	return nil
}

// DispatchOutcome is the result of one publication attempt.
type DispatchOutcome string

const (
	OutcomePublished DispatchOutcome = "published"
	OutcomeFailed    DispatchOutcome = "failed"
)

// DispatchEvent describes a recorded attempt outcome.
type DispatchEvent struct {
	PostID          int64           `json:"post_id"`
	Outcome         DispatchOutcome `json:"outcome"`
	DestinationKind DestinationKind `json:"destination_kind"`
	DestinationName string          `json:"destination_name,omitempty"`
	ContentKind     ContentKind     `json:"content_kind"`
	Title           string          `json:"title"`
	Error           string          `json:"error,omitempty"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	AttemptedAt     time.Time       `json:"attempted_at"`
}
