package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feed/internal/biz"
	"feed/internal/conf"
	"feed/internal/data/postgres/sqlc"
	"feed/internal/pkg/metrics"
	"feed/internal/pkg/pagination"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgtype"
	gobreaker "github.com/sony/gobreaker/v2"
)

const socialGraphBreaker = "social-graph"

type socialGraphRepo struct {
	data *Data
	cb   *gobreaker.CircuitBreaker[any]
	log  *log.Helper
}

// NewSocialGraphRepo creates the social graph accessor. Reads go through a circuit
// breaker so a failing database is reported as unavailable without piling up queries.
func NewSocialGraphRepo(data *Data, c *conf.Data, logger log.Logger) biz.SocialGraphRepo {
	helper := log.NewHelper(logger)
	metrics.SocialGraphBreakerState.Set(0)
	return &socialGraphRepo{
		data: data,
		cb:   gobreaker.NewCircuitBreaker[any](newBreakerSettings(c, helper)),
		log:  helper,
	}
}

func newBreakerSettings(c *conf.Data, helper *log.Helper) gobreaker.Settings {
	settings := gobreaker.Settings{
		Name:        socialGraphBreaker,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	}
	threshold := uint32(5)
	if c != nil && c.SocialGraph != nil && c.SocialGraph.Breaker != nil {
		b := c.SocialGraph.Breaker
		if b.MaxRequests > 0 {
			settings.MaxRequests = b.MaxRequests
		}
		if b.Interval > 0 {
			settings.Interval = b.Interval.AsDuration()
		}
		if b.Timeout > 0 {
			settings.Timeout = b.Timeout.AsDuration()
		}
		if b.FailureThreshold > 0 {
			threshold = b.FailureThreshold
		}
	}
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= threshold
	}
	// a cancelled request says nothing about the database
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		helper.Warnf("circuit breaker %s: %s -> %s", name, from, to)
		metrics.SocialGraphBreakerState.Set(float64(to))
	}
	return settings
}

// ListRecentPosts implements [biz.SocialGraphRepo].
func (r *socialGraphRepo) ListRecentPosts(ctx context.Context, page, perPage int) ([]*biz.Post, error) {
	// checked outside the breaker: a bad page is not a database failure
	req, err := pagination.NewOffsetRequest(page, perPage)
	if err != nil {
		return nil, err
	}
	return execute(r.cb, func() ([]*biz.Post, error) {
		rows, err := r.data.Queries.ListRecentPosts(ctx, sqlc.ListRecentPostsParams{
			Limit:  int32(req.GetLimit()),
			Offset: int32(req.GetOffset()),
		})
		if err != nil {
			return nil, err
		}
		return toBizPosts(rows), nil
	})
}

// ListCandidatePosts implements [biz.SocialGraphRepo].
func (r *socialGraphRepo) ListCandidatePosts(ctx context.Context, userID int64, limit int32) ([]*biz.Post, error) {
	return execute(r.cb, func() ([]*biz.Post, error) {
		rows, err := r.data.Queries.ListCandidatePosts(ctx, sqlc.ListCandidatePostsParams{
			UserID:   userID,
			PoolSize: limit,
		})
		if err != nil {
			return nil, err
		}
		return toBizPosts(rows), nil
	})
}

// ListFollowedUserIDs implements [biz.SocialGraphRepo].
func (r *socialGraphRepo) ListFollowedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	return execute(r.cb, func() ([]int64, error) {
		return r.data.Queries.ListFollowedUserIDs(ctx, userID)
	})
}

// execute runs fn under the breaker and restores the static result type.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	var zero T
	result, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func toBizPosts(rows []sqlc.Post) []*biz.Post {
	posts := make([]*biz.Post, len(rows))
	for i, p := range rows {
		posts[i] = toBizPost(p)
	}
	return posts
}

func toBizPost(p sqlc.Post) *biz.Post {
	var replyID *int64
	if p.ReplyID.Valid {
		id := p.ReplyID.Int64
		replyID = &id
	}
	post := &biz.Post{
		ID:            p.ID,
		UserID:        p.UserID,
		ReplyID:       replyID,
		Content:       p.Content,
		Description:   textOrEmpty(p.Description),
		ImageURL:      textOrEmpty(p.ImageUrl),
		Hashtags:      p.Hashtags,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		UpdatedAt:     fromPgTimestamptzPtr(p.UpdatedAt),
	}
	if p.CreatedAt.Valid {
		post.CreatedAt = p.CreatedAt.Time
	}
	return post
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
