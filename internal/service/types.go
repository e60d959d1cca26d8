package service

import "time"

// ExploreRequest carries the raw query of GET /posts/explore.
type ExploreRequest struct {
	Page    string `json:"page"`
	PerPage string `json:"per_page"`
}

// PostReply is one ranked post.
type PostReply struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	ReplyID       *int64     `json:"reply_id"`
	Content       string     `json:"content"`
	Description   string     `json:"description,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Hashtags      []string   `json:"hashtags"`
	LikesCount    int64      `json:"likes_count"`
	CommentsCount int64      `json:"comments_count"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Score         float64    `json:"score"`
}

// RecommendationsRequest carries GET and DELETE /users/{user_id}/recommendations.
type RecommendationsRequest struct {
	UserID    string `json:"user_id"`
	Algorithm string `json:"algorithm"`
	Limit     string `json:"limit"`
}

// RecommendationItem is one recommended post.
type RecommendationItem struct {
	PostID int64   `json:"post_id"`
	Score  float64 `json:"score"`
}

// RecommendationsReply is a served recommendation list.
type RecommendationsReply struct {
	UserID      int64                 `json:"user_id"`
	Algorithm   string                `json:"algorithm"`
	Version     string                `json:"version"`
	Cached      bool                  `json:"cached"`
	GeneratedAt time.Time             `json:"generated_at"`
	ExpiresAt   time.Time             `json:"expires_at"`
	Items       []*RecommendationItem `json:"items"`
}

// InvalidateReply reports how many cached lists were dropped.
type InvalidateReply struct {
	Invalidated int64 `json:"invalidated"`
}

// FollowRequest carries /users/{user_id}/following/{followed_id}.
type FollowRequest struct {
	UserID     string `json:"user_id"`
	FollowedID string `json:"followed_id"`
}

// LikeRequest carries /posts/{post_id}/likes/{user_id}.
type LikeRequest struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

// ChangeReply reports whether a write changed anything.
type ChangeReply struct {
	Changed bool `json:"changed"`
}
