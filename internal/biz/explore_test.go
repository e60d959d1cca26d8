package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

func newTestExplore(graph *fakeGraph, now time.Time) *ExploreUsecase {
	uc := NewExploreUsecase(graph, NewScorer(DefaultScoringConfig()), log.DefaultLogger)
	uc.now = func() time.Time { return now }
	return uc
}

func TestExploreUsecase_Explore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	graph := &fakeGraph{posts: []*Post{
		{ID: 1, LikesCount: 10, CommentsCount: 4, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, LikesCount: 20, CreatedAt: now.Add(-72 * time.Hour)},
	}}
	uc := newTestExplore(graph, now)

	got, err := uc.Explore(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Post.ID != 2 || got[0].Score != 40 {
		t.Errorf("first = post %d score %v, want post 2 score 40", got[0].Post.ID, got[0].Score)
	}
	if got[1].Post.ID != 1 || got[1].Score < 26.93 || got[1].Score > 26.94 {
		t.Errorf("second = post %d score %v, want post 1 score ~26.9375", got[1].Post.ID, got[1].Score)
	}
}

func TestExploreUsecase_WindowedPages(t *testing.T) {
	now := time.Now()
	graph := &fakeGraph{posts: []*Post{
		{ID: 1, CreatedAt: now},
		{ID: 2, LikesCount: 1, CreatedAt: now},
		{ID: 3, LikesCount: 100, CreatedAt: now},
	}}
	uc := newTestExplore(graph, now)

	first, err := uc.Explore(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(first) != 2 || first[0].Post.ID != 2 || first[1].Post.ID != 1 {
		t.Errorf("page 1 = %v, want posts [2 1]", ids(first))
	}
	second, err := uc.Explore(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if len(second) != 1 || second[0].Post.ID != 3 {
		t.Errorf("page 2 = %v, want posts [3]", ids(second))
	}
}

func TestExploreUsecase_Empty(t *testing.T) {
	uc := newTestExplore(&fakeGraph{}, time.Now())
	got, err := uc.Explore(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("Explore failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Explore() = %v, want empty non-nil slice", got)
	}
}

func TestExploreUsecase_InvalidArgument(t *testing.T) {
	graph := &fakeGraph{}
	uc := newTestExplore(graph, time.Now())

	tests := []struct {
		name          string
		page, perPage int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero per page", 1, 0},
		{"per page over max", 1, 101},
		{"offset past int32", 21474838, 100},
		{"offset wraps around int32", 42949674, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Explore(context.Background(), tt.page, tt.perPage)
			if !kerrors.Is(err, ErrInvalidArgument) {
				t.Errorf("Explore() error = %v, want invalid argument", err)
			}
		})
	}
	if graph.recent != 0 {
		t.Errorf("accessor called %d times for invalid input", graph.recent)
	}
}

func TestExploreUsecase_UpstreamUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	uc := newTestExplore(&fakeGraph{err: cause}, time.Now())

	_, err := uc.Explore(context.Background(), 1, 10)
	if !kerrors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("Explore() error = %v, want upstream unavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Error("error should wrap the accessor cause")
	}
	if got := kerrors.FromError(err).Metadata[MetadataDetail]; got != cause.Error() {
		t.Errorf("detail = %q, want %q", got, cause.Error())
	}
}

func ids(posts []*ScoredPost) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.Post.ID
	}
	return out
}
