package biz

import (
	"context"
	"time"

	"feed/internal/pkg/metrics"
	"feed/internal/pkg/pagination"

	"github.com/go-kratos/kratos/v2/log"
)

// ExploreUsecase ranks one page of recent posts with the Scorer.
//
// Only the fetched page is ranked: a post on page 2 never outranks one on page 1
// regardless of score.
type ExploreUsecase struct {
	graph  SocialGraphRepo
	scorer *Scorer
	now    func() time.Time
	log    *log.Helper
}

// NewExploreUsecase creates a new ExploreUsecase.
func NewExploreUsecase(graph SocialGraphRepo, scorer *Scorer, logger log.Logger) *ExploreUsecase {
	return &ExploreUsecase{
		graph:  graph,
		scorer: scorer,
		now:    time.Now,
		log:    log.NewHelper(logger),
	}
}

// Explore returns page of recent posts ordered by score.
func (uc *ExploreUsecase) Explore(ctx context.Context, page, perPage int) ([]*ScoredPost, error) {
	req, err := pagination.NewOffsetRequest(page, perPage)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	posts, err := uc.graph.ListRecentPosts(ctx, req.Page, req.PageSize)
	if err != nil {
		uc.log.Errorf("explore: list recent posts page=%d per_page=%d: %v", req.Page, req.PageSize, err)
		return nil, upstreamUnavailable("failed to load posts for explore", err)
	}
	if len(posts) == 0 {
		return []*ScoredPost{}, nil
	}
	if len(posts) > req.PageSize {
		posts = posts[:req.PageSize]
	}

	ranked := uc.scorer.Rank(posts, uc.now())
	metrics.ExploreRanked.Observe(float64(len(ranked)))
	uc.log.Debugf("explore: ranked %d posts page=%d", len(ranked), req.Page)
	return ranked, nil
}
