package biz

import (
	"context"
	"sync"
	"time"
)

type fakeGraph struct {
	mu        sync.Mutex
	posts     []*Post
	followed  map[int64][]int64
	err       error
	recent    int
	candidate int

	// when gate is set ListCandidatePosts signals entered and blocks until gate
	// closes or its context ends
	gate    chan struct{}
	entered chan struct{}
}

func (g *fakeGraph) ListRecentPosts(_ context.Context, page, perPage int) ([]*Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recent++
	if g.err != nil {
		return nil, g.err
	}
	start := (page - 1) * perPage
	if start >= len(g.posts) {
		return nil, nil
	}
	end := min(start+perPage, len(g.posts))
	return g.posts[start:end], nil
}

func (g *fakeGraph) ListCandidatePosts(ctx context.Context, _ int64, limit int32) ([]*Post, error) {
	if g.gate != nil {
		select {
		case g.entered <- struct{}{}:
		default:
		}
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.candidate++
	if g.err != nil {
		return nil, g.err
	}
	if int(limit) < len(g.posts) {
		return g.posts[:limit], nil
	}
	return g.posts, nil
}

func (g *fakeGraph) ListFollowedUserIDs(_ context.Context, userID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.followed[userID], nil
}

func (g *fakeGraph) candidateCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.candidate
}

type fakeCacheRepo struct {
	mu       sync.Mutex
	entries  map[CacheKey]*RecommendationEntry
	getErr   error
	putErr   error
	swept    time.Time
	putCalls int
	invErr   error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[CacheKey]*RecommendationEntry)}
}

func (r *fakeCacheRepo) Get(_ context.Context, key CacheKey, now time.Time) (*RecommendationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	e, ok := r.entries[key]
	if !ok || !e.Valid(now) {
		return nil, nil
	}
	return e, nil
}

func (r *fakeCacheRepo) Put(_ context.Context, entry *RecommendationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putCalls++
	if r.putErr != nil {
		return r.putErr
	}
	r.entries[entry.Key()] = entry
	return nil
}

func (r *fakeCacheRepo) Invalidate(_ context.Context, userID int64, algorithm string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invErr != nil {
		return 0, r.invErr
	}
	var n int64
	for k := range r.entries {
		if k.UserID == userID && k.Algorithm == algorithm {
			delete(r.entries, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeCacheRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swept = before
	var n int64
	for k, e := range r.entries {
		if e.ExpiresAt.Before(before) {
			delete(r.entries, k)
			n++
		}
	}
	return n, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
