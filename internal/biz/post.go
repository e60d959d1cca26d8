package biz

import (
	"context"
	"time"
)

// Post is the engagement snapshot of a post as read from the social graph.
type Post struct {
	ID            int64
	UserID        int64
	ReplyID       *int64
	Content       string
	Description   string
	ImageURL      string
	Hashtags      []string
	LikesCount    int64
	CommentsCount int64
	CreatedAt     time.Time // zero when the publication time is unknown
	UpdatedAt     *time.Time
}

// ScoredPost is a post with its ranking score.
type ScoredPost struct {
	Post  *Post
	Score float64
}

// SocialGraphRepo is the read side of users, posts, likes and follows.
type SocialGraphRepo interface {
	// ListRecentPosts returns one page of posts, newest first.
	ListRecentPosts(ctx context.Context, page, perPage int) ([]*Post, error)
	// ListCandidatePosts returns recent posts eligible for the user's recommendations:
	// not authored by the user and not already liked by them.
	ListCandidatePosts(ctx context.Context, userID int64, limit int32) ([]*Post, error)
	// ListFollowedUserIDs returns the ids the user follows.
	ListFollowedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}
