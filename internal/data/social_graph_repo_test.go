package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"feed/internal/conf"
	"feed/internal/data/postgres/sqlc"
	"feed/internal/pkg/pagination"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgtype"
	gobreaker "github.com/sony/gobreaker/v2"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	c := &conf.Data{SocialGraph: &conf.Data_SocialGraph{Breaker: &conf.Data_SocialGraph_Breaker{
		FailureThreshold: 3,
		Timeout:          conf.Duration(time.Hour),
	}}}
	cb := gobreaker.NewCircuitBreaker[any](newBreakerSettings(c, log.NewHelper(log.DefaultLogger)))
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if _, err := execute(cb, func() ([]int64, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want %v", i, err, boom)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %s, want open", cb.State())
	}
	if _, err := execute(cb, func() ([]int64, error) { return []int64{1}, nil }); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want %v", err, gobreaker.ErrOpenState)
	}
}

func TestBreaker_IgnoresCancellation(t *testing.T) {
	c := &conf.Data{SocialGraph: &conf.Data_SocialGraph{Breaker: &conf.Data_SocialGraph_Breaker{FailureThreshold: 1}}}
	cb := gobreaker.NewCircuitBreaker[any](newBreakerSettings(c, log.NewHelper(log.DefaultLogger)))

	for i := 0; i < 3; i++ {
		_, _ = execute(cb, func() ([]int64, error) { return nil, context.Canceled })
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("State() = %s, want closed", cb.State())
	}
}

func TestExecute_TypedResult(t *testing.T) {
	cb := gobreaker.NewCircuitBreaker[any](newBreakerSettings(nil, log.NewHelper(log.DefaultLogger)))
	got, err := execute(cb, func() ([]int64, error) { return []int64{3, 5}, nil })
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if len(got) != 2 || got[1] != 5 {
		t.Errorf("execute() = %v", got)
	}
}

func TestToBizPost(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := toBizPost(sqlc.Post{
		ID:            1,
		UserID:        2,
		ReplyID:       pgtype.Int8{Int64: 9, Valid: true},
		Content:       "hello",
		Description:   pgtype.Text{String: "desc", Valid: true},
		Hashtags:      []string{"go"},
		LikesCount:    3,
		CommentsCount: 4,
		CreatedAt:     pgtype.Timestamptz{Time: created, Valid: true},
	})
	if p.ReplyID == nil || *p.ReplyID != 9 {
		t.Errorf("ReplyID = %v, want 9", p.ReplyID)
	}
	if p.Description != "desc" || p.ImageURL != "" {
		t.Errorf("Description = %q ImageURL = %q", p.Description, p.ImageURL)
	}
	if !p.CreatedAt.Equal(created) || p.UpdatedAt != nil {
		t.Errorf("CreatedAt = %s UpdatedAt = %v", p.CreatedAt, p.UpdatedAt)
	}

	unknown := toBizPost(sqlc.Post{ID: 2})
	if !unknown.CreatedAt.IsZero() {
		t.Errorf("CreatedAt = %s, want zero for a NULL timestamp", unknown.CreatedAt)
	}
}

func TestSocialGraphRepo_ListRecentPostsOffset(t *testing.T) {
	db := &fakeDB{}
	c := &conf.Data{SocialGraph: &conf.Data_SocialGraph{Breaker: &conf.Data_SocialGraph_Breaker{FailureThreshold: 1}}}
	repo := NewSocialGraphRepo(newFakeData(db), c, log.DefaultLogger).(*socialGraphRepo)
	ctx := context.Background()

	if _, err := repo.ListRecentPosts(ctx, 21474837, 100); err != nil {
		t.Fatalf("ListRecentPosts() error = %v", err)
	}
	if len(db.queryArgs) != 1 {
		t.Fatalf("queries = %d, want 1", len(db.queryArgs))
	}
	if limit, offset := db.queryArgs[0][0], db.queryArgs[0][1]; limit != int32(100) || offset != int32(2147483600) {
		t.Errorf("limit, offset = %v, %v; want 100, 2147483600", limit, offset)
	}

	for _, page := range []int{21474838, 42949674} {
		if _, err := repo.ListRecentPosts(ctx, page, 100); !errors.Is(err, pagination.ErrPageOutOfRange) {
			t.Errorf("ListRecentPosts(page=%d) error = %v, want %v", page, err, pagination.ErrPageOutOfRange)
		}
	}
	if len(db.queryArgs) != 1 {
		t.Errorf("queries = %d, an out of range page must not reach postgres", len(db.queryArgs))
	}
	if repo.cb.State() != gobreaker.StateClosed {
		t.Errorf("State() = %s, a rejected page must not count as a failure", repo.cb.State())
	}
}
