package client

import (
	"context"

	"github.com/anonto42/moments/backend/internal/optimistic"
)

// ToggleLike flips the caller's like on postID optimistically: the returned
// update holds the view shown before the call and the view after it settled.
func (c *Client) ToggleLike(ctx context.Context, postID string, reporter optimistic.Reporter, opts ...optimistic.Option[optimistic.LikeView]) (optimistic.Update[optimistic.LikeView], error) {
	post, err := c.Post(ctx, postID)
	if err != nil {
		return optimistic.Update[optimistic.LikeView]{}, err
	}
	liked, err := c.HasLiked(ctx, postID)
	if err != nil {
		return optimistic.Update[optimistic.LikeView]{}, err
	}

	cell := optimistic.NewCell(optimistic.LikeView{Liked: liked, Count: post.LikesCount}, reporter, opts...)
	op := "like"
	remote := func(ctx context.Context) error { return c.Like(ctx, postID) }
	if liked {
		op = "unlike"
		remote = func(ctx context.Context) error { return c.Unlike(ctx, postID) }
	}
	return cell.Run(ctx, op, optimistic.LikeView.Toggle, remote)
}

// ToggleFollow flips whether the caller follows uid, the same way ToggleLike does.
func (c *Client) ToggleFollow(ctx context.Context, uid string, reporter optimistic.Reporter, opts ...optimistic.Option[optimistic.FollowView]) (optimistic.Update[optimistic.FollowView], error) {
	profile, err := c.Profile(ctx, uid)
	if err != nil {
		return optimistic.Update[optimistic.FollowView]{}, err
	}
	following, err := c.IsFollowing(ctx, uid)
	if err != nil {
		return optimistic.Update[optimistic.FollowView]{}, err
	}

	cell := optimistic.NewCell(optimistic.FollowView{Following: following, Followers: profile.FollowersCount}, reporter, opts...)
	op := "follow"
	remote := func(ctx context.Context) error { return c.Follow(ctx, uid) }
	if following {
		op = "unfollow"
		remote = func(ctx context.Context) error { return c.Unfollow(ctx, uid) }
	}
	return cell.Run(ctx, op, optimistic.FollowView.Toggle, remote)
}
