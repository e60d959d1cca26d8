package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
)

// FollowRepo is a Follow repository interface.
type FollowRepo interface {
	// Follow returns false when the follow already existed.
	Follow(ctx context.Context, followerID, followedID int64) (bool, error)
	// Unfollow returns false when there was nothing to remove.
	Unfollow(ctx context.Context, followerID, followedID int64) (bool, error)
}

// LikeRepo is a Like repository interface. Implementations keep the post's
// likes counter in step with the likes rows.
type LikeRepo interface {
	Like(ctx context.Context, userID, postID int64) (bool, error)
	Unlike(ctx context.Context, userID, postID int64) (bool, error)
}

// SocialUsecase handles the graph writes that affect ranking.
type SocialUsecase struct {
	follows FollowRepo
	likes   LikeRepo
	recs    *RecommendationUsecase
	log     *log.Helper
}

// NewSocialUsecase creates a new SocialUsecase.
func NewSocialUsecase(follows FollowRepo, likes LikeRepo, recs *RecommendationUsecase, logger log.Logger) *SocialUsecase {
	return &SocialUsecase{
		follows: follows,
		likes:   likes,
		recs:    recs,
		log:     log.NewHelper(logger),
	}
}

// Follow makes followerID follow followedID. Following twice is a no-op.
func (uc *SocialUsecase) Follow(ctx context.Context, followerID, followedID int64) (bool, error) {
	if followerID <= 0 || followedID <= 0 {
		return false, invalidArgument("user ids must be positive integers")
	}
	if followerID == followedID {
		return false, invalidArgument("a user cannot follow themselves")
	}
	created, err := uc.follows.Follow(ctx, followerID, followedID)
	if err != nil {
		return false, storeError("failed to write follow", err)
	}
	uc.log.Infof("Follow: %d -> %d created=%v", followerID, followedID, created)
	if err := uc.invalidate(ctx, followerID); err != nil {
		return created, err
	}
	return created, nil
}

// Unfollow removes the follow. The follower's cached recommendations are dropped
// so the change shows before their TTL runs out.
func (uc *SocialUsecase) Unfollow(ctx context.Context, followerID, followedID int64) (bool, error) {
	if followerID <= 0 || followedID <= 0 {
		return false, invalidArgument("user ids must be positive integers")
	}
	removed, err := uc.follows.Unfollow(ctx, followerID, followedID)
	if err != nil {
		return false, storeError("failed to remove follow", err)
	}
	uc.log.Infof("Unfollow: %d -> %d removed=%v", followerID, followedID, removed)
	if err := uc.invalidate(ctx, followerID); err != nil {
		return removed, err
	}
	return removed, nil
}

// Like records a like. Liking twice is a no-op.
func (uc *SocialUsecase) Like(ctx context.Context, userID, postID int64) (bool, error) {
	if userID <= 0 || postID <= 0 {
		return false, invalidArgument("user_id and post_id must be positive integers")
	}
	created, err := uc.likes.Like(ctx, userID, postID)
	if err != nil {
		return false, storeError("failed to write like", err)
	}
	uc.log.Debugf("Like: user=%d post=%d created=%v", userID, postID, created)
	return created, nil
}

// Unlike removes a like.
func (uc *SocialUsecase) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	if userID <= 0 || postID <= 0 {
		return false, invalidArgument("user_id and post_id must be positive integers")
	}
	removed, err := uc.likes.Unlike(ctx, userID, postID)
	if err != nil {
		return false, storeError("failed to remove like", err)
	}
	uc.log.Debugf("Unlike: user=%d post=%d removed=%v", userID, postID, removed)
	return removed, nil
}

// invalidate runs after no-op writes too, so retrying a follow whose invalidation
// failed still clears the stale lists.
func (uc *SocialUsecase) invalidate(ctx context.Context, userID int64) error {
	_, err := uc.recs.Invalidate(ctx, userID, "")
	return err
}
