package biz

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"feed/internal/pkg/hash"
)

const (
	AlgorithmHeuristic   = "heuristic"
	AlgorithmFollowGraph = "follow_graph"
)

// Recommender ranks a candidate pool for a user.
//
// Implementations must be deterministic for identical inputs and model state, return
// an empty list for an empty pool, and fall back to the non-personalized heuristic for
// users without interaction history. Version must change whenever a tunable parameter
// changes, since it is part of the cache key.
type Recommender interface {
	Name() string
	Version() string
	Recommend(ctx context.Context, userID int64, candidates []*Post, topK int) ([]Recommendation, error)
}

// HeuristicRecommender ranks candidates by the explore score. It is the default
// algorithm and the cold start fallback of every other recommender.
type HeuristicRecommender struct {
	scorer  *Scorer
	version string
	now     func() time.Time
}

// NewHeuristicRecommender creates a new HeuristicRecommender.
func NewHeuristicRecommender(scorer *Scorer) *HeuristicRecommender {
	return &HeuristicRecommender{
		scorer:  scorer,
		version: hash.Fingerprint(append([]string{AlgorithmHeuristic}, scoringParams(scorer.Config())...)...),
		now:     time.Now,
	}
}

func (r *HeuristicRecommender) Name() string    { return AlgorithmHeuristic }
func (r *HeuristicRecommender) Version() string { return r.version }

// Recommend implements Recommender.
func (r *HeuristicRecommender) Recommend(_ context.Context, _ int64, candidates []*Post, topK int) ([]Recommendation, error) {
	if topK <= 0 || len(candidates) == 0 {
		return []Recommendation{}, nil
	}
	return toRecommendations(r.scorer.Rank(candidates, r.now()), topK), nil
}

// FollowGraphRecommender adds FollowBoost to the heuristic score of posts written by
// authors the user follows. Users who follow nobody get the heuristic ranking.
type FollowGraphRecommender struct {
	scorer  *Scorer
	graph   SocialGraphRepo
	boost   float64
	version string
	now     func() time.Time
}

// NewFollowGraphRecommender creates a new FollowGraphRecommender.
func NewFollowGraphRecommender(scorer *Scorer, graph SocialGraphRepo, boost float64) *FollowGraphRecommender {
	params := append(scoringParams(scorer.Config()), "follow_boost="+formatFloat(boost))
	return &FollowGraphRecommender{
		scorer:  scorer,
		graph:   graph,
		boost:   boost,
		version: hash.Fingerprint(append([]string{AlgorithmFollowGraph}, params...)...),
		now:     time.Now,
	}
}

func (r *FollowGraphRecommender) Name() string    { return AlgorithmFollowGraph }
func (r *FollowGraphRecommender) Version() string { return r.version }

// Recommend implements Recommender.
func (r *FollowGraphRecommender) Recommend(ctx context.Context, userID int64, candidates []*Post, topK int) ([]Recommendation, error) {
	if topK <= 0 || len(candidates) == 0 {
		return []Recommendation{}, nil
	}

	followed, err := r.graph.ListFollowedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followed users of %d: %w", userID, err)
	}
	now := r.now()
	if len(followed) == 0 {
		return toRecommendations(r.scorer.Rank(candidates, now), topK), nil
	}

	authors := make(map[int64]struct{}, len(followed))
	for _, id := range followed {
		authors[id] = struct{}{}
	}

	ranked := make([]*ScoredPost, 0, len(candidates))
	for _, p := range candidates {
		if p == nil {
			continue
		}
		score := r.scorer.ScorePost(p, now)
		if _, ok := authors[p.UserID]; ok {
			score += r.boost
		}
		ranked = append(ranked, &ScoredPost{Post: p, Score: score})
	}
	sortByScore(ranked)
	return toRecommendations(ranked, topK), nil
}

// RecommenderRegistry resolves algorithm tags to recommenders.
type RecommenderRegistry struct {
	byName map[string]Recommender
	names  []string
}

// NewRecommenderRegistry registers recs under their names. A later recommender with
// the same name replaces an earlier one.
func NewRecommenderRegistry(recs ...Recommender) *RecommenderRegistry {
	r := &RecommenderRegistry{byName: make(map[string]Recommender, len(recs))}
	for _, rec := range recs {
		r.byName[rec.Name()] = rec
	}
	for name := range r.byName {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Get returns the recommender registered for name.
func (r *RecommenderRegistry) Get(name string) (Recommender, bool) {
	rec, ok := r.byName[name]
	return rec, ok
}

// Names returns the registered algorithm tags, sorted.
func (r *RecommenderRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// Experiment gives an algorithm a share of users.
type Experiment struct {
	Algorithm string
	Weight    int
}

// ExperimentAssigner pins each user to one algorithm of a weighted split, so that
// algorithms can run side by side for different users.
type ExperimentAssigner struct {
	ring *hash.ConsistentHash
}

// NewExperimentAssigner builds the split from experiments naming registered
// algorithms. Without any usable experiment every user gets the heuristic.
func NewExperimentAssigner(experiments []Experiment, registry *RecommenderRegistry) *ExperimentAssigner {
	ring := hash.NewConsistentHash(hash.WithHashFunc(hash.FastHash))
	for _, e := range experiments {
		if _, ok := registry.Get(e.Algorithm); !ok || e.Weight <= 0 {
			continue
		}
		ring.AddWithWeight(e.Algorithm, e.Weight)
	}
	if len(ring.Nodes()) == 0 {
		ring.Add(AlgorithmHeuristic)
	}
	return &ExperimentAssigner{ring: ring}
}

// Assign returns the algorithm of userID.
func (a *ExperimentAssigner) Assign(userID int64) string {
	algorithm, ok := a.ring.Get("user:" + strconv.FormatInt(userID, 10))
	if !ok {
		return AlgorithmHeuristic
	}
	return algorithm
}

func toRecommendations(ranked []*ScoredPost, topK int) []Recommendation {
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	recs := make([]Recommendation, len(ranked))
	for i, sp := range ranked {
		recs[i] = Recommendation{PostID: sp.Post.ID, Score: sp.Score}
	}
	return recs
}

func scoringParams(cfg ScoringConfig) []string {
	return []string{
		"like_weight=" + formatFloat(cfg.LikeWeight),
		"comment_weight=" + formatFloat(cfg.CommentWeight),
		"recency_weight=" + formatFloat(cfg.RecencyWeight),
		"recency_horizon=" + cfg.RecencyHorizon.String(),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
