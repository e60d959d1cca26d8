package biz

import (
	"feed/internal/conf"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewScoringConfig,
	NewCacheConfig,
	NewRecommendConfig,
	NewScorer,
	NewExploreUsecase,
	NewRecommendationCache,
	NewRecommenders,
	NewAssigner,
	NewRecommendationUsecase,
	NewSocialUsecase,
)

// NewScoringConfig overrides the default weights with the configured ones.
func NewScoringConfig(c *conf.Ranking) ScoringConfig {
	cfg := DefaultScoringConfig()
	if c == nil {
		return cfg
	}
	setWeight(&cfg.LikeWeight, c.LikeWeight)
	setWeight(&cfg.CommentWeight, c.CommentWeight)
	setWeight(&cfg.RecencyWeight, c.RecencyWeight)
	if c.RecencyHorizon > 0 {
		cfg.RecencyHorizon = c.RecencyHorizon.AsDuration()
	}
	return cfg
}

// setWeight applies a configured weight. Unset and negative values keep the default.
func setWeight(dst *float64, v *float64) {
	if v != nil && *v >= 0 {
		*dst = *v
	}
}

// NewCacheConfig builds the cache settings from the recommend and housekeeping sections.
func NewCacheConfig(rc *conf.Recommend, hc *conf.Housekeeping) CacheConfig {
	cfg := DefaultCacheConfig()
	if rc != nil && rc.CacheTTL > 0 {
		cfg.TTL = rc.CacheTTL.AsDuration()
	}
	if hc != nil && hc.SafetyMargin > 0 {
		cfg.SafetyMargin = hc.SafetyMargin.AsDuration()
	}
	return cfg
}

// NewRecommendConfig overrides the default recommendation settings with the configured ones.
func NewRecommendConfig(c *conf.Recommend) RecommendConfig {
	cfg := DefaultRecommendConfig()
	if c == nil {
		return cfg
	}
	if c.CacheTTL > 0 {
		cfg.CacheTTL = c.CacheTTL.AsDuration()
	}
	if c.CandidatePoolSize > 0 {
		cfg.CandidatePoolSize = c.CandidatePoolSize
	}
	if c.MaxResults > 0 {
		cfg.MaxResults = c.MaxResults
	}
	if c.DefaultLimit > 0 {
		cfg.DefaultLimit = c.DefaultLimit
	}
	if cfg.DefaultLimit > cfg.MaxResults {
		cfg.DefaultLimit = cfg.MaxResults
	}
	if c.FollowBoost > 0 {
		cfg.FollowBoost = c.FollowBoost
	}
	if c.ComputeTimeout > 0 {
		cfg.ComputeTimeout = c.ComputeTimeout.AsDuration()
	}
	if len(c.Experiments) > 0 {
		cfg.Experiments = cfg.Experiments[:0:0]
		for _, e := range c.Experiments {
			if e == nil {
				continue
			}
			cfg.Experiments = append(cfg.Experiments, Experiment{Algorithm: e.Algorithm, Weight: e.Weight})
		}
	}
	return cfg
}

// NewRecommenders registers every available recommender.
func NewRecommenders(scorer *Scorer, graph SocialGraphRepo, cfg RecommendConfig) *RecommenderRegistry {
	return NewRecommenderRegistry(
		NewHeuristicRecommender(scorer),
		NewFollowGraphRecommender(scorer, graph, cfg.FollowBoost),
	)
}

// NewAssigner builds the experiment split from configuration.
func NewAssigner(cfg RecommendConfig, registry *RecommenderRegistry) *ExperimentAssigner {
	return NewExperimentAssigner(cfg.Experiments, registry)
}
