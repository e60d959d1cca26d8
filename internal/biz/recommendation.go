package biz

import (
	"context"
	"fmt"
	"time"

	"feed/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/singleflight"
)

// RecommendConfig holds personalized recommendation settings.
type RecommendConfig struct {
	CacheTTL          time.Duration
	CandidatePoolSize int32
	MaxResults        int
	DefaultLimit      int
	FollowBoost       float64
	ComputeTimeout    time.Duration // bounds a shared computation once callers stop waiting
	Experiments       []Experiment
}

// DefaultRecommendConfig returns default configuration.
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		CacheTTL:          15 * time.Minute,
		CandidatePoolSize: 200,
		MaxResults:        100,
		DefaultLimit:      20,
		FollowBoost:       5,
		ComputeTimeout:    10 * time.Second,
		Experiments: []Experiment{
			{Algorithm: AlgorithmHeuristic, Weight: 100},
		},
	}
}

// RecommendationResult is a served recommendation list.
type RecommendationResult struct {
	Entry  *RecommendationEntry
	Items  []Recommendation // Entry.Recommendations truncated to the requested limit
	Cached bool
}

// RecommendationUsecase serves recommendation lists from the cache, computing and
// storing them on a miss.
type RecommendationUsecase struct {
	graph    SocialGraphRepo
	cache    *RecommendationCache
	registry *RecommenderRegistry
	assigner *ExperimentAssigner
	cfg      RecommendConfig
	group    singleflight.Group
	log      *log.Helper
}

// NewRecommendationUsecase creates a new RecommendationUsecase.
func NewRecommendationUsecase(
	graph SocialGraphRepo,
	cache *RecommendationCache,
	registry *RecommenderRegistry,
	assigner *ExperimentAssigner,
	cfg RecommendConfig,
	logger log.Logger,
) *RecommendationUsecase {
	return &RecommendationUsecase{
		graph:    graph,
		cache:    cache,
		registry: registry,
		assigner: assigner,
		cfg:      cfg,
		log:      log.NewHelper(logger),
	}
}

// DefaultLimit returns the list length served when the caller gives none.
func (uc *RecommendationUsecase) DefaultLimit() int {
	return uc.cfg.DefaultLimit
}

// MaxResults returns the longest list that can be requested.
func (uc *RecommendationUsecase) MaxResults() int {
	return uc.cfg.MaxResults
}

// Recommend returns up to limit recommendations for userID. An empty algorithm
// selects the user's experiment arm.
func (uc *RecommendationUsecase) Recommend(ctx context.Context, userID int64, algorithm string, limit int) (*RecommendationResult, error) {
	if userID <= 0 {
		return nil, invalidArgument("user_id must be a positive integer")
	}
	if limit < 1 || limit > uc.cfg.MaxResults {
		return nil, invalidArgument("limit must be between 1 and %d", uc.cfg.MaxResults)
	}
	if algorithm == "" {
		algorithm = uc.assigner.Assign(userID)
	}
	rec, ok := uc.registry.Get(algorithm)
	if !ok {
		return nil, ErrUnknownAlgorithm.WithMetadata(map[string]string{MetadataDetail: "algorithm " + algorithm})
	}
	version := rec.Version()

	entry, err := uc.cache.Get(ctx, userID, algorithm, version)
	if err != nil {
		// the cache is advisory; a broken read costs a recomputation
		uc.log.Warnf("recommendation cache read user=%d algorithm=%s: %v", userID, algorithm, err)
	}
	if entry != nil {
		return newRecommendationResult(entry, limit, true), nil
	}

	key := fmt.Sprintf("%d:%s:%s", userID, algorithm, version)
	ch := uc.group.DoChan(key, func() (any, error) {
		// detached from the caller that started it: others may be waiting on the key
		cctx := context.WithoutCancel(ctx)
		if uc.cfg.ComputeTimeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(cctx, uc.cfg.ComputeTimeout)
			defer cancel()
		}
		return uc.compute(cctx, userID, rec)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return newRecommendationResult(res.Val.(*RecommendationEntry), limit, false), nil
	}
}

func (uc *RecommendationUsecase) compute(ctx context.Context, userID int64, rec Recommender) (*RecommendationEntry, error) {
	start := time.Now()

	candidates, err := uc.graph.ListCandidatePosts(ctx, userID, uc.cfg.CandidatePoolSize)
	if err != nil {
		uc.log.Errorf("list candidate posts user=%d: %v", userID, err)
		return nil, upstreamUnavailable("failed to load recommendation candidates", err)
	}

	recs, err := rec.Recommend(ctx, userID, candidates, uc.cfg.MaxResults)
	if err != nil {
		uc.log.Errorf("recommend user=%d algorithm=%s: %v", userID, rec.Name(), err)
		return nil, upstreamUnavailable("failed to compute recommendations", err)
	}
	metrics.RecommendationComputeDuration.WithLabelValues(rec.Name()).Observe(time.Since(start).Seconds())

	entry, err := uc.cache.Put(ctx, userID, rec.Name(), rec.Version(), recs, uc.cfg.CacheTTL)
	if err != nil {
		uc.log.Warnf("recommendation cache write user=%d algorithm=%s: %v", userID, rec.Name(), err)
		now := time.Now()
		return &RecommendationEntry{
			UserID:          userID,
			Algorithm:       rec.Name(),
			Version:         rec.Version(),
			Recommendations: recs,
			CreatedAt:       now,
			ExpiresAt:       now.Add(uc.cfg.CacheTTL),
		}, nil
	}
	uc.log.Debugf("computed %d recommendations user=%d algorithm=%s in %s",
		len(recs), userID, rec.Name(), time.Since(start))
	return entry, nil
}

// Invalidate drops the cached lists of userID for algorithm, or for every registered
// algorithm when algorithm is empty.
func (uc *RecommendationUsecase) Invalidate(ctx context.Context, userID int64, algorithm string) (int64, error) {
	if userID <= 0 {
		return 0, invalidArgument("user_id must be a positive integer")
	}
	algorithms := uc.registry.Names()
	if algorithm != "" {
		if _, ok := uc.registry.Get(algorithm); !ok {
			return 0, ErrUnknownAlgorithm.WithMetadata(map[string]string{MetadataDetail: "algorithm " + algorithm})
		}
		algorithms = []string{algorithm}
	}

	var total int64
	for _, a := range algorithms {
		n, err := uc.cache.Invalidate(ctx, userID, a)
		if err != nil {
			uc.log.Errorf("invalidate recommendations user=%d algorithm=%s: %v", userID, a, err)
			return total, upstreamUnavailable("failed to invalidate cached recommendations", err)
		}
		total += n
	}
	return total, nil
}

func newRecommendationResult(entry *RecommendationEntry, limit int, cached bool) *RecommendationResult {
	items := entry.Recommendations
	if len(items) > limit {
		items = items[:limit]
	}
	return &RecommendationResult{Entry: entry, Items: items, Cached: cached}
}
