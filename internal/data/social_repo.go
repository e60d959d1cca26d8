package data

import (
	"context"
	"errors"
	"strings"

	"feed/internal/biz"
	"feed/internal/data/postgres/sqlc"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

type followRepo struct {
	data *Data
	log  *log.Helper
}

// NewFollowRepo creates a new FollowRepo.
func NewFollowRepo(data *Data, logger log.Logger) biz.FollowRepo {
	return &followRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Follow implements [biz.FollowRepo].
func (r *followRepo) Follow(ctx context.Context, followerID, followedID int64) (bool, error) {
	n, err := r.data.Queries.CreateFollow(ctx, sqlc.CreateFollowParams{
		FollowerID: followerID,
		FollowedID: followedID,
	})
	if err != nil {
		return false, mapConstraintError(err)
	}
	return n > 0, nil
}

// Unfollow implements [biz.FollowRepo].
func (r *followRepo) Unfollow(ctx context.Context, followerID, followedID int64) (bool, error) {
	n, err := r.data.Queries.DeleteFollow(ctx, sqlc.DeleteFollowParams{
		FollowerID: followerID,
		FollowedID: followedID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type likeRepo struct {
	data *Data
	log  *log.Helper
}

// NewLikeRepo creates a new LikeRepo.
func NewLikeRepo(data *Data, logger log.Logger) biz.LikeRepo {
	return &likeRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// Like implements [biz.LikeRepo]. The like row and the counter move in one transaction.
func (r *likeRepo) Like(ctx context.Context, userID, postID int64) (bool, error) {
	var created bool
	err := r.data.InTx(ctx, func(q *sqlc.Queries) error {
		n, err := q.CreateLike(ctx, sqlc.CreateLikeParams{UserID: userID, PostID: postID})
		if err != nil {
			return mapConstraintError(err)
		}
		if n == 0 {
			return nil
		}
		created = true
		_, err = q.IncrementPostLikes(ctx, postID)
		return err
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Unlike implements [biz.LikeRepo].
func (r *likeRepo) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	var removed bool
	err := r.data.InTx(ctx, func(q *sqlc.Queries) error {
		n, err := q.DeleteLike(ctx, sqlc.DeleteLikeParams{UserID: userID, PostID: postID})
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		removed = true
		_, err = q.DecrementPostLikes(ctx, postID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// mapConstraintError turns a foreign key violation into the not found error of the
// missing side.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "post_id") {
		return biz.ErrPostNotFound.WithCause(err)
	}
	return biz.ErrUserNotFound.WithCause(err)
}
