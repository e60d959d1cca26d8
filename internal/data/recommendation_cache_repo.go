package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"feed/internal/biz"
	"feed/internal/data/postgres/sqlc"
	pkgredis "feed/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const recommendationKeyPrefix = "feed:rec:"

// recommendationCacheRepo keeps every entry in postgres and a copy of the live ones
// in a redis hash per (user, algorithm), one field per version.
type recommendationCacheRepo struct {
	data *Data
	hot  *hotTier
	log  *log.Helper
}

// NewRecommendationCacheRepo creates a new RecommendationCacheRepo.
func NewRecommendationCacheRepo(data *Data, cache pkgredis.Cache, logger log.Logger) biz.RecommendationCacheRepo {
	return &recommendationCacheRepo{
		data: data,
		hot:  &hotTier{cache: cache},
		log:  log.NewHelper(logger),
	}
}

func (r *recommendationCacheRepo) Get(ctx context.Context, key biz.CacheKey, now time.Time) (*biz.RecommendationEntry, error) {
	entry, err := r.hot.get(ctx, key, now)
	if err != nil {
		r.log.Warnf("redis read %s: %v", recommendationKey(key.UserID, key.Algorithm), err)
	}
	if entry != nil {
		return entry, nil
	}

	entry, err = r.getRow(ctx, key, now)
	if err != nil || entry == nil {
		return nil, err
	}
	r.backfill(ctx, entry, now)
	return entry, nil
}

func (r *recommendationCacheRepo) getRow(ctx context.Context, key biz.CacheKey, now time.Time) (*biz.RecommendationEntry, error) {
	row, err := r.data.Queries.GetRecommendationCache(ctx, sqlc.GetRecommendationCacheParams{
		UserID:    key.UserID,
		Algorithm: key.Algorithm,
		Version:   key.Version,
		Now:       toPgTimestamptz(now),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return toBizRecommendationEntry(row)
}

// backfill copies a postgres hit into redis, then checks the row is still the same
// entry. An Invalidate or Put that ran between the read and the write would otherwise
// leave a copy in redis that postgres no longer holds.
func (r *recommendationCacheRepo) backfill(ctx context.Context, entry *biz.RecommendationEntry, now time.Time) {
	if r.hot.cache == nil {
		return
	}
	hkey := recommendationKey(entry.UserID, entry.Algorithm)
	if err := r.hot.put(ctx, entry, now); err != nil {
		r.log.Warnf("redis backfill %s: %v", hkey, err)
		return
	}
	current, err := r.getRow(ctx, entry.Key(), now)
	if err == nil && current != nil && current.ID == entry.ID {
		return
	}
	if err := r.hot.drop(ctx, entry.Key()); err != nil {
		r.log.Errorf("redis drop unconfirmed backfill %s: %v", hkey, err)
	}
}

func (r *recommendationCacheRepo) Put(ctx context.Context, entry *biz.RecommendationEntry) error {
	payload, err := encodeRecommendations(entry.Recommendations)
	if err != nil {
		return err
	}
	err = r.data.Queries.UpsertRecommendationCache(ctx, sqlc.UpsertRecommendationCacheParams{
		ID:              entry.ID,
		UserID:          entry.UserID,
		Algorithm:       entry.Algorithm,
		Recommendations: payload,
		CreatedAt:       toPgTimestamptz(entry.CreatedAt),
		ExpiresAt:       toPgTimestamptz(entry.ExpiresAt),
		Version:         entry.Version,
	})
	if err != nil {
		return err
	}
	if err := r.hot.put(ctx, entry, entry.CreatedAt); err != nil {
		// drop the superseded copy so readers fall through to postgres
		r.log.Warnf("redis write %s: %v", recommendationKey(entry.UserID, entry.Algorithm), err)
		if derr := r.hot.drop(ctx, entry.Key()); derr != nil {
			return fmt.Errorf("evict stale redis entry: %w", derr)
		}
	}
	return nil
}

// Invalidate evicts redis before and after the postgres delete. A failed first
// eviction aborts with postgres untouched; the second removes a copy a concurrent
// backfill wrote in between.
func (r *recommendationCacheRepo) Invalidate(ctx context.Context, userID int64, algorithm string) (int64, error) {
	if err := r.hot.invalidate(ctx, userID, algorithm); err != nil {
		return 0, fmt.Errorf("evict redis entries: %w", err)
	}
	n, err := r.data.Queries.DeleteRecommendationCaches(ctx, sqlc.DeleteRecommendationCachesParams{
		UserID:    userID,
		Algorithm: algorithm,
	})
	if err != nil {
		return 0, err
	}
	if err := r.hot.invalidate(ctx, userID, algorithm); err != nil {
		return n, fmt.Errorf("evict redis entries: %w", err)
	}
	return n, nil
}

func (r *recommendationCacheRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.data.Queries.DeleteExpiredRecommendationCaches(ctx, toPgTimestamptz(before))
	if err != nil {
		return 0, err
	}
	r.log.Infof("deleted %d expired recommendation cache rows", n)
	return n, nil
}

// hotTier is the redis side of the recommendation cache. Hash keys expire with
// their longest lived field; shorter lived fields are filtered on read.
type hotTier struct {
	cache pkgredis.Cache
}

func (h *hotTier) get(ctx context.Context, key biz.CacheKey, now time.Time) (*biz.RecommendationEntry, error) {
	if h.cache == nil {
		return nil, nil
	}
	raw, err := h.cache.HGetBytes(ctx, recommendationKey(key.UserID, key.Algorithm), key.Version)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		return nil, err
	}
	if entry.Key() != key || !entry.Valid(now) {
		return nil, nil
	}
	return entry, nil
}

func (h *hotTier) put(ctx context.Context, entry *biz.RecommendationEntry, now time.Time) error {
	if h.cache == nil {
		return nil
	}
	ttl := entry.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	raw, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return h.cache.HSetBytes(ctx, recommendationKey(entry.UserID, entry.Algorithm), entry.Version, raw, ttl)
}

func (h *hotTier) drop(ctx context.Context, key biz.CacheKey) error {
	if h.cache == nil {
		return nil
	}
	_, err := h.cache.HDel(ctx, recommendationKey(key.UserID, key.Algorithm), key.Version)
	return err
}

func (h *hotTier) invalidate(ctx context.Context, userID int64, algorithm string) error {
	if h.cache == nil {
		return nil
	}
	_, err := h.cache.Del(ctx, recommendationKey(userID, algorithm))
	return err
}

func recommendationKey(userID int64, algorithm string) string {
	return recommendationKeyPrefix + strconv.FormatInt(userID, 10) + ":" + algorithm
}

type recommendationPayload struct {
	PostID int64   `json:"post_id"`
	Score  float64 `json:"score"`
}

type entryPayload struct {
	ID              uuid.UUID               `json:"id"`
	UserID          int64                   `json:"user_id"`
	Algorithm       string                  `json:"algorithm"`
	Version         string                  `json:"version"`
	Recommendations []recommendationPayload `json:"recommendations"`
	CreatedAt       time.Time               `json:"created_at"`
	ExpiresAt       time.Time               `json:"expires_at"`
}

func encodeRecommendations(recs []biz.Recommendation) ([]byte, error) {
	return json.Marshal(toRecommendationPayloads(recs))
}

func decodeRecommendations(raw []byte) ([]biz.Recommendation, error) {
	var payload []recommendationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return fromRecommendationPayloads(payload), nil
}

func encodeEntry(e *biz.RecommendationEntry) ([]byte, error) {
	return json.Marshal(entryPayload{
		ID:              e.ID,
		UserID:          e.UserID,
		Algorithm:       e.Algorithm,
		Version:         e.Version,
		Recommendations: toRecommendationPayloads(e.Recommendations),
		CreatedAt:       e.CreatedAt,
		ExpiresAt:       e.ExpiresAt,
	})
}

func decodeEntry(raw []byte) (*biz.RecommendationEntry, error) {
	var p entryPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode recommendation entry: %w", err)
	}
	return &biz.RecommendationEntry{
		ID:              p.ID,
		UserID:          p.UserID,
		Algorithm:       p.Algorithm,
		Version:         p.Version,
		Recommendations: fromRecommendationPayloads(p.Recommendations),
		CreatedAt:       p.CreatedAt,
		ExpiresAt:       p.ExpiresAt,
	}, nil
}

func toRecommendationPayloads(recs []biz.Recommendation) []recommendationPayload {
	payload := make([]recommendationPayload, len(recs))
	for i, rec := range recs {
		payload[i] = recommendationPayload{PostID: rec.PostID, Score: rec.Score}
	}
	return payload
}

func fromRecommendationPayloads(payload []recommendationPayload) []biz.Recommendation {
	recs := make([]biz.Recommendation, len(payload))
	for i, p := range payload {
		recs[i] = biz.Recommendation{PostID: p.PostID, Score: p.Score}
	}
	return recs
}

func toBizRecommendationEntry(row sqlc.RecommendationCache) (*biz.RecommendationEntry, error) {
	recs, err := decodeRecommendations(row.Recommendations)
	if err != nil {
		return nil, err
	}
	return &biz.RecommendationEntry{
		ID:              row.ID,
		UserID:          row.UserID,
		Algorithm:       row.Algorithm,
		Version:         row.Version,
		Recommendations: recs,
		CreatedAt:       timeOrZero(row.CreatedAt),
		ExpiresAt:       timeOrZero(row.ExpiresAt),
	}, nil
}

func timeOrZero(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
