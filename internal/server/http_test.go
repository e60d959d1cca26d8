package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"feed/internal/biz"
	"feed/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

type stubGraph struct {
	posts []*biz.Post
	err   error
}

func (g *stubGraph) ListRecentPosts(_ context.Context, page, perPage int) ([]*biz.Post, error) {
	if g.err != nil {
		return nil, g.err
	}
	start := (page - 1) * perPage
	if start >= len(g.posts) {
		return nil, nil
	}
	return g.posts[start:min(start+perPage, len(g.posts))], nil
}

func (g *stubGraph) ListCandidatePosts(_ context.Context, _ int64, _ int32) ([]*biz.Post, error) {
	return g.posts, g.err
}

func (g *stubGraph) ListFollowedUserIDs(context.Context, int64) ([]int64, error) {
	return nil, g.err
}

type stubCacheRepo struct {
	mu      sync.Mutex
	entries map[biz.CacheKey]*biz.RecommendationEntry
}

func (r *stubCacheRepo) Get(_ context.Context, key biz.CacheKey, now time.Time) (*biz.RecommendationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[key]
	if e == nil || !e.Valid(now) {
		return nil, nil
	}
	return e, nil
}

func (r *stubCacheRepo) Put(_ context.Context, e *biz.RecommendationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Key()] = e
	return nil
}

func (r *stubCacheRepo) Invalidate(_ context.Context, userID int64, algorithm string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.entries {
		if k.UserID == userID && k.Algorithm == algorithm {
			delete(r.entries, k)
			n++
		}
	}
	return n, nil
}

func (r *stubCacheRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

type stubFollows struct{ err error }

func (s stubFollows) Follow(context.Context, int64, int64) (bool, error) { return s.err == nil, s.err }
func (s stubFollows) Unfollow(context.Context, int64, int64) (bool, error) {
	return s.err == nil, s.err
}

type stubLikes struct{}

func (stubLikes) Like(_ context.Context, _, postID int64) (bool, error) {
	if postID == 404 {
		return false, biz.ErrPostNotFound
	}
	return true, nil
}
func (stubLikes) Unlike(context.Context, int64, int64) (bool, error) { return false, nil }

func newTestServer(graph biz.SocialGraphRepo) *khttp.Server {
	return newTestServerWithFollows(graph, stubFollows{})
}

func newTestServerWithFollows(graph biz.SocialGraphRepo, follows biz.FollowRepo) *khttp.Server {
	logger := log.DefaultLogger
	scorer := biz.NewScorer(biz.DefaultScoringConfig())
	cfg := biz.DefaultRecommendConfig()
	cache := biz.NewRecommendationCache(&stubCacheRepo{entries: map[biz.CacheKey]*biz.RecommendationEntry{}}, biz.DefaultCacheConfig(), logger)
	registry := biz.NewRecommenders(scorer, graph, cfg)
	recs := biz.NewRecommendationUsecase(graph, cache, registry, biz.NewAssigner(cfg, registry), cfg, logger)
	feed := service.NewFeedService(
		biz.NewExploreUsecase(graph, scorer, logger),
		recs,
		biz.NewSocialUsecase(follows, stubLikes{}, recs, logger),
		logger,
	)
	return NewHTTPServer(nil, feed, logger)
}

func do(t *testing.T, srv *khttp.Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_Explore(t *testing.T) {
	now := time.Now()
	srv := newTestServer(&stubGraph{posts: []*biz.Post{
		{ID: 1, LikesCount: 10, CommentsCount: 4, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, LikesCount: 20, CreatedAt: now.Add(-72 * time.Hour)},
	}})

	rec := do(t, srv, http.MethodGet, "/posts/explore?page=1&per_page=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var posts []service.PostReply
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != 2 || posts[0].Score != 40 {
		t.Errorf("posts = %+v, want post 2 first with score 40", posts)
	}
}

func TestHTTP_ExploreErrors(t *testing.T) {
	tests := []struct {
		name       string
		graph      *stubGraph
		target     string
		wantStatus int
		wantDetail string
	}{
		{"bad page", &stubGraph{}, "/posts/explore?page=abc", http.StatusBadRequest, ""},
		{"zero per page", &stubGraph{}, "/posts/explore?per_page=0", http.StatusBadRequest, ""},
		{"per page over max", &stubGraph{}, "/posts/explore?per_page=101", http.StatusBadRequest, ""},
		{"upstream", &stubGraph{err: errors.New("pool exhausted")}, "/posts/explore", http.StatusInternalServerError, "pool exhausted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(tt.graph), http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			var body ErrorReply
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
			if body.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", body.Detail, tt.wantDetail)
			}
		})
	}
}

func TestHTTP_Recommendations(t *testing.T) {
	now := time.Now()
	srv := newTestServer(&stubGraph{posts: []*biz.Post{
		{ID: 1, LikesCount: 1, CreatedAt: now},
		{ID: 2, LikesCount: 5, CreatedAt: now},
		{ID: 3, LikesCount: 3, CreatedAt: now},
	}})

	rec := do(t, srv, http.MethodGet, "/users/7/recommendations?algorithm=heuristic&limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var first service.RecommendationsReply
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.UserID != 7 || first.Algorithm != biz.AlgorithmHeuristic || first.Cached {
		t.Errorf("reply = %+v", first)
	}
	if len(first.Version) != 32 {
		t.Errorf("version = %q, want 32 hex characters", first.Version)
	}
	if len(first.Items) != 2 || first.Items[0].PostID != 2 || first.Items[1].PostID != 3 {
		t.Errorf("items = %+v, want posts [2 3]", first.Items)
	}

	rec = do(t, srv, http.MethodGet, "/users/7/recommendations?algorithm=heuristic")
	var second service.RecommendationsReply
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !second.Cached || len(second.Items) != 3 {
		t.Errorf("second reply cached=%v items=%d, want cached with 3 items", second.Cached, len(second.Items))
	}

	rec = do(t, srv, http.MethodDelete, "/users/7/recommendations")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"invalidated":1`) {
		t.Errorf("invalidate = %d %s", rec.Code, rec.Body)
	}
}

func TestHTTP_RecommendationErrors(t *testing.T) {
	srv := newTestServer(&stubGraph{})
	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/users/abc/recommendations", http.StatusBadRequest},
		{"/users/0/recommendations", http.StatusBadRequest},
		{"/users/1/recommendations?limit=0", http.StatusBadRequest},
		{"/users/1/recommendations?limit=101", http.StatusBadRequest},
		{"/users/1/recommendations?algorithm=collaborative", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if rec := do(t, srv, http.MethodGet, tt.target); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}

func TestHTTP_SocialWrites(t *testing.T) {
	srv := newTestServer(&stubGraph{})
	tests := []struct {
		method     string
		target     string
		wantStatus int
	}{
		{http.MethodPost, "/users/1/following/2", http.StatusOK},
		{http.MethodPost, "/users/1/following/1", http.StatusBadRequest},
		{http.MethodDelete, "/users/1/following/2", http.StatusOK},
		{http.MethodPost, "/posts/10/likes/1", http.StatusOK},
		{http.MethodPost, "/posts/404/likes/1", http.StatusNotFound},
		{http.MethodDelete, "/posts/10/likes/1", http.StatusOK},
		{http.MethodPost, "/posts/x/likes/1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			if rec := do(t, srv, tt.method, tt.target); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}
}

func TestHTTP_Metrics(t *testing.T) {
	rec := do(t, newTestServer(&stubGraph{}), http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHTTP_StoreErrorsKeepTextInDetail(t *testing.T) {
	cause := errors.New(`ERROR: canceling statement due to lock timeout (SQLSTATE 55P03)`)
	srv := newTestServerWithFollows(&stubGraph{}, stubFollows{err: cause})

	for _, method := range []string{http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := do(t, srv, method, "/users/1/following/2")
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500 (body %s)", rec.Code, rec.Body)
			}
			var body ErrorReply
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if strings.Contains(body.Error, "SQLSTATE") {
				t.Errorf("error = %q, store text must stay out of it", body.Error)
			}
			if body.Detail != cause.Error() {
				t.Errorf("detail = %q, want %q", body.Detail, cause.Error())
			}
		})
	}
}

func TestEncodeError_PlainError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/posts/explore", nil)
	rec := httptest.NewRecorder()
	encodeError(rec, req, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body ErrorReply
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "internal error" || !strings.Contains(body.Detail, "connection refused") {
		t.Errorf("body = %+v", body)
	}
}
