package service

import (
	"context"
	"strconv"

	"feed/internal/biz"
	"feed/internal/pkg/pagination"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const (
	OperationFeedExplore                   = "/feed.v1.Feed/Explore"
	OperationFeedGetRecommendations        = "/feed.v1.Feed/GetRecommendations"
	OperationFeedInvalidateRecommendations = "/feed.v1.Feed/InvalidateRecommendations"
	OperationFeedFollow                    = "/feed.v1.Feed/Follow"
	OperationFeedUnfollow                  = "/feed.v1.Feed/Unfollow"
	OperationFeedLike                      = "/feed.v1.Feed/Like"
	OperationFeedUnlike                    = "/feed.v1.Feed/Unlike"
)

// FeedService exposes explore, recommendations and the social writes over HTTP.
type FeedService struct {
	explore *biz.ExploreUsecase
	recs    *biz.RecommendationUsecase
	social  *biz.SocialUsecase
	log     *log.Helper
}

// NewFeedService creates a new FeedService.
func NewFeedService(explore *biz.ExploreUsecase, recs *biz.RecommendationUsecase, social *biz.SocialUsecase, logger log.Logger) *FeedService {
	return &FeedService{
		explore: explore,
		recs:    recs,
		social:  social,
		log:     log.NewHelper(logger),
	}
}

// RegisterHTTP mounts the feed routes on srv.
func (s *FeedService) RegisterHTTP(srv *khttp.Server) {
	r := srv.Route("/")
	r.GET("/posts/explore", s.exploreHandler)
	r.GET("/users/{user_id}/recommendations", s.getRecommendationsHandler)
	r.DELETE("/users/{user_id}/recommendations", s.invalidateRecommendationsHandler)
	r.POST("/users/{user_id}/following/{followed_id}", s.followHandler(OperationFeedFollow, s.Follow))
	r.DELETE("/users/{user_id}/following/{followed_id}", s.followHandler(OperationFeedUnfollow, s.Unfollow))
	r.POST("/posts/{post_id}/likes/{user_id}", s.likeHandler(OperationFeedLike, s.Like))
	r.DELETE("/posts/{post_id}/likes/{user_id}", s.likeHandler(OperationFeedUnlike, s.Unlike))
}

// Explore ranks one page of recent posts.
func (s *FeedService) Explore(ctx context.Context, in *ExploreRequest) ([]*PostReply, error) {
	req, err := pagination.ParseOffsetRequest(in.Page, in.PerPage)
	if err != nil {
		return nil, invalidArgument(err)
	}
	ranked, err := s.explore.Explore(ctx, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	out := make([]*PostReply, len(ranked))
	for i, sp := range ranked {
		out[i] = toPostReply(sp)
	}
	return out, nil
}

// GetRecommendations serves the user's recommendation list.
func (s *FeedService) GetRecommendations(ctx context.Context, in *RecommendationsRequest) (*RecommendationsReply, error) {
	userID, err := parseID("user_id", in.UserID)
	if err != nil {
		return nil, err
	}
	limit, err := pagination.ParseLimit(in.Limit, s.recs.DefaultLimit(), s.recs.MaxResults())
	if err != nil {
		return nil, invalidArgument(err)
	}
	res, err := s.recs.Recommend(ctx, userID, in.Algorithm, limit)
	if err != nil {
		return nil, err
	}
	items := make([]*RecommendationItem, len(res.Items))
	for i, rec := range res.Items {
		items[i] = &RecommendationItem{PostID: rec.PostID, Score: rec.Score}
	}
	return &RecommendationsReply{
		UserID:      res.Entry.UserID,
		Algorithm:   res.Entry.Algorithm,
		Version:     res.Entry.Version,
		Cached:      res.Cached,
		GeneratedAt: res.Entry.CreatedAt,
		ExpiresAt:   res.Entry.ExpiresAt,
		Items:       items,
	}, nil
}

// InvalidateRecommendations drops the user's cached lists.
func (s *FeedService) InvalidateRecommendations(ctx context.Context, in *RecommendationsRequest) (*InvalidateReply, error) {
	userID, err := parseID("user_id", in.UserID)
	if err != nil {
		return nil, err
	}
	n, err := s.recs.Invalidate(ctx, userID, in.Algorithm)
	if err != nil {
		return nil, err
	}
	return &InvalidateReply{Invalidated: n}, nil
}

// Follow makes user_id follow followed_id.
func (s *FeedService) Follow(ctx context.Context, in *FollowRequest) (*ChangeReply, error) {
	follower, followed, err := parseFollow(in)
	if err != nil {
		return nil, err
	}
	changed, err := s.social.Follow(ctx, follower, followed)
	if err != nil {
		return nil, err
	}
	return &ChangeReply{Changed: changed}, nil
}

// Unfollow removes the follow.
func (s *FeedService) Unfollow(ctx context.Context, in *FollowRequest) (*ChangeReply, error) {
	follower, followed, err := parseFollow(in)
	if err != nil {
		return nil, err
	}
	changed, err := s.social.Unfollow(ctx, follower, followed)
	if err != nil {
		return nil, err
	}
	return &ChangeReply{Changed: changed}, nil
}

// Like records that user_id likes post_id.
func (s *FeedService) Like(ctx context.Context, in *LikeRequest) (*ChangeReply, error) {
	userID, postID, err := parseLike(in)
	if err != nil {
		return nil, err
	}
	changed, err := s.social.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &ChangeReply{Changed: changed}, nil
}

// Unlike removes the like.
func (s *FeedService) Unlike(ctx context.Context, in *LikeRequest) (*ChangeReply, error) {
	userID, postID, err := parseLike(in)
	if err != nil {
		return nil, err
	}
	changed, err := s.social.Unlike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &ChangeReply{Changed: changed}, nil
}

func (s *FeedService) exploreHandler(ctx khttp.Context) error {
	var in ExploreRequest
	if err := ctx.BindQuery(&in); err != nil {
		return err
	}
	khttp.SetOperation(ctx, OperationFeedExplore)
	h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
		return s.Explore(ctx, req.(*ExploreRequest))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *FeedService) getRecommendationsHandler(ctx khttp.Context) error {
	var in RecommendationsRequest
	if err := ctx.BindQuery(&in); err != nil {
		return err
	}
	if err := ctx.BindVars(&in); err != nil {
		return err
	}
	khttp.SetOperation(ctx, OperationFeedGetRecommendations)
	h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
		return s.GetRecommendations(ctx, req.(*RecommendationsRequest))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *FeedService) invalidateRecommendationsHandler(ctx khttp.Context) error {
	var in RecommendationsRequest
	if err := ctx.BindQuery(&in); err != nil {
		return err
	}
	if err := ctx.BindVars(&in); err != nil {
		return err
	}
	khttp.SetOperation(ctx, OperationFeedInvalidateRecommendations)
	h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
		return s.InvalidateRecommendations(ctx, req.(*RecommendationsRequest))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *FeedService) followHandler(operation string, call func(context.Context, *FollowRequest) (*ChangeReply, error)) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in FollowRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*FollowRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func (s *FeedService) likeHandler(operation string, call func(context.Context, *LikeRequest) (*ChangeReply, error)) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in LikeRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*LikeRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

func toPostReply(sp *biz.ScoredPost) *PostReply {
	p := sp.Post
	reply := &PostReply{
		ID:            p.ID,
		UserID:        p.UserID,
		ReplyID:       p.ReplyID,
		Content:       p.Content,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		Hashtags:      p.Hashtags,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		UpdatedAt:     p.UpdatedAt,
		Score:         sp.Score,
	}
	if reply.Hashtags == nil {
		reply.Hashtags = []string{}
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		reply.CreatedAt = &created
	}
	return reply
}

func parseFollow(in *FollowRequest) (int64, int64, error) {
	follower, err := parseID("user_id", in.UserID)
	if err != nil {
		return 0, 0, err
	}
	followed, err := parseID("followed_id", in.FollowedID)
	if err != nil {
		return 0, 0, err
	}
	return follower, followed, nil
}

func parseLike(in *LikeRequest) (int64, int64, error) {
	userID, err := parseID("user_id", in.UserID)
	if err != nil {
		return 0, 0, err
	}
	postID, err := parseID("post_id", in.PostID)
	if err != nil {
		return 0, 0, err
	}
	return userID, postID, nil
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest(biz.ReasonInvalidArgument, name+" must be a positive integer")
	}
	return id, nil
}

func invalidArgument(err error) error {
	return errors.BadRequest(biz.ReasonInvalidArgument, err.Error())
}
