package biz

import (
	"context"
	"time"

	"feed/internal/pkg/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// Recommendation is one ranked post of a recommendation list.
type Recommendation struct {
	PostID int64
	Score  float64
}

// CacheKey addresses a recommendation list.
type CacheKey struct {
	UserID    int64
	Algorithm string
	Version   string
}

// RecommendationEntry represents a cached recommendation list.
// Entries are never modified after creation; a newer entry for the same key supersedes them.
type RecommendationEntry struct {
	ID              uuid.UUID
	UserID          int64
	Algorithm       string
	Version         string
	Recommendations []Recommendation
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Key returns the entry's address.
func (e *RecommendationEntry) Key() CacheKey {
	return CacheKey{UserID: e.UserID, Algorithm: e.Algorithm, Version: e.Version}
}

// Valid reports whether the entry may still be served at now.
func (e *RecommendationEntry) Valid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// RecommendationCacheRepo is a repository interface for recommendation caches.
type RecommendationCacheRepo interface {
	// Get returns the entry stored for key that is unexpired at now, or nil.
	Get(ctx context.Context, key CacheKey, now time.Time) (*RecommendationEntry, error)
	// Put stores entry, replacing any entry with the same key.
	Put(ctx context.Context, entry *RecommendationEntry) error
	// Invalidate removes every entry of the user and algorithm, across versions.
	Invalidate(ctx context.Context, userID int64, algorithm string) (int64, error)
	// DeleteExpired removes entries that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// CacheConfig holds recommendation cache settings.
type CacheConfig struct {
	TTL          time.Duration
	SafetyMargin time.Duration
}

// DefaultCacheConfig returns default configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:          15 * time.Minute,
		SafetyMargin: time.Hour,
	}
}

// RecommendationCache stores ranked lists per (user, algorithm, version) with a TTL.
// Expired or superseded entries are never returned.
type RecommendationCache struct {
	repo RecommendationCacheRepo
	cfg  CacheConfig
	now  func() time.Time
	log  *log.Helper
}

// NewRecommendationCache creates a new RecommendationCache.
func NewRecommendationCache(repo RecommendationCacheRepo, cfg CacheConfig, logger log.Logger) *RecommendationCache {
	return &RecommendationCache{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
		log:  log.NewHelper(logger),
	}
}

// Get returns the live entry for the key, or nil on a miss.
func (c *RecommendationCache) Get(ctx context.Context, userID int64, algorithm, version string) (*RecommendationEntry, error) {
	key := CacheKey{UserID: userID, Algorithm: algorithm, Version: version}
	now := c.now()

	entry, err := c.repo.Get(ctx, key, now)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Key() != key || !entry.Valid(now) {
		metrics.RecommendationCacheLookups.WithLabelValues(algorithm, metrics.ResultMiss).Inc()
		return nil, nil
	}
	metrics.RecommendationCacheLookups.WithLabelValues(algorithm, metrics.ResultHit).Inc()
	return entry, nil
}

// Put stores recs for the key, expiring ttl from now.
func (c *RecommendationCache) Put(ctx context.Context, userID int64, algorithm, version string, recs []Recommendation, ttl time.Duration) (*RecommendationEntry, error) {
	if ttl <= 0 {
		return nil, invalidArgument("cache ttl must be positive, got %s", ttl)
	}
	now := c.now()
	entry := &RecommendationEntry{
		ID:              uuid.New(),
		UserID:          userID,
		Algorithm:       algorithm,
		Version:         version,
		Recommendations: append([]Recommendation(nil), recs...),
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}
	if entry.Recommendations == nil {
		entry.Recommendations = []Recommendation{}
	}
	if err := c.repo.Put(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Invalidate makes every cached list of the user and algorithm a miss.
func (c *RecommendationCache) Invalidate(ctx context.Context, userID int64, algorithm string) (int64, error) {
	n, err := c.repo.Invalidate(ctx, userID, algorithm)
	if err != nil {
		return 0, err
	}
	metrics.RecommendationCacheInvalidations.WithLabelValues(algorithm).Add(float64(n))
	c.log.Debugf("invalidated %d recommendation entries user=%d algorithm=%s", n, userID, algorithm)
	return n, nil
}

// Sweep deletes entries expired for longer than the safety margin.
func (c *RecommendationCache) Sweep(ctx context.Context) (int64, error) {
	before := c.now().Add(-c.cfg.SafetyMargin)
	n, err := c.repo.DeleteExpired(ctx, before)
	if err != nil {
		metrics.CacheSweepFailures.Inc()
		return 0, err
	}
	metrics.CacheSweepDeleted.Add(float64(n))
	return n, nil
}
