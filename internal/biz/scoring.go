package biz

import (
	"sort"
	"time"
)

// ScoringConfig holds the explore heuristic weights.
type ScoringConfig struct {
	LikeWeight     float64
	CommentWeight  float64
	RecencyWeight  float64
	RecencyHorizon time.Duration
}

// DefaultScoringConfig returns default configuration.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		LikeWeight:     2,
		CommentWeight:  1,
		RecencyWeight:  3,
		RecencyHorizon: 48 * time.Hour,
	}
}

// Scorer computes the engagement and recency score of a post:
//
//	score = likes*LikeWeight + comments*CommentWeight + recency*RecencyWeight
//
// where recency decays linearly from 1 at publication to 0 at RecencyHorizon.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a Scorer. A non-positive horizon falls back to the default.
func NewScorer(cfg ScoringConfig) *Scorer {
	if cfg.RecencyHorizon <= 0 {
		cfg.RecencyHorizon = DefaultScoringConfig().RecencyHorizon
	}
	return &Scorer{cfg: cfg}
}

// Config returns the weights in use.
func (s *Scorer) Config() ScoringConfig {
	return s.cfg
}

// Recency returns the recency component in [0, 1]. An unknown (zero) publication
// time yields 0, a publication time after now yields 1.
func (s *Scorer) Recency(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	horizon := s.cfg.RecencyHorizon.Hours()
	age := now.Sub(createdAt).Hours()
	if age < 0 {
		age = 0
	}
	return max(0, horizon-age) / horizon
}

// Score scores raw engagement counters. Negative counters count as zero.
func (s *Scorer) Score(likes, comments int64, createdAt, now time.Time) float64 {
	likes = max(likes, 0)
	comments = max(comments, 0)
	return float64(likes)*s.cfg.LikeWeight +
		float64(comments)*s.cfg.CommentWeight +
		s.Recency(createdAt, now)*s.cfg.RecencyWeight
}

// ScorePost scores a post snapshot.
func (s *Scorer) ScorePost(p *Post, now time.Time) float64 {
	return s.Score(p.LikesCount, p.CommentsCount, p.CreatedAt, now)
}

// Rank scores posts against a single now and sorts them by score, highest first.
// Equal scores keep their input order.
func (s *Scorer) Rank(posts []*Post, now time.Time) []*ScoredPost {
	ranked := make([]*ScoredPost, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		ranked = append(ranked, &ScoredPost{Post: p, Score: s.ScorePost(p, now)})
	}
	sortByScore(ranked)
	return ranked
}

func sortByScore(posts []*ScoredPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Score > posts[j].Score
	})
}
