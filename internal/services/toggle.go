package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/metrics"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"github.com/sirupsen/logrus"
)

// ToggleResult reports whether the edge exists after the toggle.
type ToggleResult struct {
	Active bool `json:"active"`
}

// FollowEntry is one side of a follow edge with the counterpart's profile.
type FollowEntry struct {
	User       models.UserCompact `json:"user"`
	FollowedAt time.Time          `json:"followed_at"`
}

// LikeStatus is the like count of a target and whether the caller likes it.
type LikeStatus struct {
	Count int64 `json:"count"`
	Liked bool  `json:"liked"`
}

// ToggleStore creates and removes follow and like edges.
// Duplicate inserts are caught by the storage uniqueness constraint, so
// racing identical toggles leave exactly one edge.
type ToggleStore struct {
	follows   repositories.FollowRepository
	likes     repositories.LikeRepository
	posts     repositories.PostRepository
	comments  repositories.CommentRepository
	directory *Directory
	notifier  *InteractionNotifier
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger
}

type ToggleStoreDeps struct {
	Follows   repositories.FollowRepository
	Likes     repositories.LikeRepository
	Posts     repositories.PostRepository
	Comments  repositories.CommentRepository
	Directory *Directory
	Notifier  *InteractionNotifier
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger
}

func NewToggleStore(d ToggleStoreDeps) *ToggleStore {
	return &ToggleStore{
		follows:   d.Follows,
		likes:     d.Likes,
		posts:     d.Posts,
		comments:  d.Comments,
		directory: d.Directory,
		notifier:  d.Notifier,
		metrics:   d.Metrics,
		logger:    d.Logger.WithField("component", "toggle"),
	}
}

// ToggleFollow follows target if follower does not follow it yet, otherwise unfollows.
func (s *ToggleStore) ToggleFollow(ctx context.Context, follower, target uint) (ToggleResult, error) {
	if follower == 0 || target == 0 {
		return ToggleResult{}, apperr.Validation("user id is required")
	}
	if follower == target {
		return ToggleResult{}, apperr.SelfReference("you cannot follow yourself")
	}

	exists, err := s.follows.IsFollowing(ctx, follower, target)
	if err != nil {
		return ToggleResult{}, apperr.Internal(err)
	}
	if exists {
		if _, err := s.follows.DeleteFollow(ctx, follower, target); err != nil {
			return ToggleResult{}, apperr.Internal(err)
		}
		s.count("follow", "inactive")
		return ToggleResult{Active: false}, nil
	}

	err = s.follows.CreateFollow(ctx, &models.Follow{FollowerID: follower, FollowingID: target})
	if errors.Is(err, repositories.ErrDuplicate) {
		s.count("follow", "conflict")
		return ToggleResult{}, apperr.AlreadyActive("already following this user")
	}
	if err != nil {
		return ToggleResult{}, apperr.Internal(err)
	}
	s.count("follow", "active")

	// Best effort: the edge stands even if the notification is lost.
	_ = s.notifier.Followed(ctx, follower, target)
	return ToggleResult{Active: true}, nil
}

// ToggleLike likes the target if user has not liked it yet, otherwise unlikes.
func (s *ToggleStore) ToggleLike(ctx context.Context, user uint, kind models.TargetKind, targetID string) (ToggleResult, error) {
	if user == 0 {
		return ToggleResult{}, apperr.Validation("user id is required")
	}
	if !kind.Valid() {
		return ToggleResult{}, apperr.Validation("target kind must be post or comment")
	}
	if targetID == "" {
		return ToggleResult{}, apperr.Validation("target id is required")
	}

	target, err := s.resolveTarget(ctx, kind, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	liked, err := s.likes.HasUserLiked(ctx, user, kind, targetID)
	if err != nil {
		return ToggleResult{}, apperr.Internal(err)
	}
	if liked {
		if _, err := s.likes.DeleteLike(ctx, user, kind, targetID); err != nil {
			return ToggleResult{}, apperr.Internal(err)
		}
		s.count("like", "inactive")
		return ToggleResult{Active: false}, nil
	}

	err = s.likes.CreateLike(ctx, &models.Like{UserID: user, TargetType: kind, TargetID: targetID})
	if errors.Is(err, repositories.ErrDuplicate) {
		s.count("like", "conflict")
		return ToggleResult{}, apperr.AlreadyActive("already liked")
	}
	if err != nil {
		return ToggleResult{}, apperr.Internal(err)
	}
	s.count("like", "active")

	_ = s.notifier.Liked(ctx, user, target.owner, target.postID, target.commentID)
	return ToggleResult{Active: true}, nil
}

func (s *ToggleStore) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	ok, err := s.follows.IsFollowing(ctx, a, b)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return ok, nil
}

// ListFollowers returns the users following user, newest edge first.
func (s *ToggleStore) ListFollowers(ctx context.Context, user uint) ([]FollowEntry, error) {
	edges, err := s.follows.GetFollowers(ctx, user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.entries(ctx, edges, func(f models.Follow) uint { return f.FollowerID })
}

// ListFollowing returns the users user follows, newest edge first.
func (s *ToggleStore) ListFollowing(ctx context.Context, user uint) ([]FollowEntry, error) {
	edges, err := s.follows.GetFollowing(ctx, user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.entries(ctx, edges, func(f models.Follow) uint { return f.FollowingID })
}

// LikeStatus reports the like count of a target and whether user likes it.
func (s *ToggleStore) LikeStatus(ctx context.Context, user uint, kind models.TargetKind, targetID string) (LikeStatus, error) {
	if !kind.Valid() {
		return LikeStatus{}, apperr.Validation("target kind must be post or comment")
	}
	count, err := s.likes.GetLikesCount(ctx, kind, targetID)
	if err != nil {
		return LikeStatus{}, apperr.Internal(err)
	}
	liked, err := s.likes.HasUserLiked(ctx, user, kind, targetID)
	if err != nil {
		return LikeStatus{}, apperr.Internal(err)
	}
	return LikeStatus{Count: count, Liked: liked}, nil
}

func (s *ToggleStore) entries(ctx context.Context, edges []models.Follow, counterpart func(models.Follow) uint) ([]FollowEntry, error) {
	ids := make([]uint, len(edges))
	for i, e := range edges {
		ids[i] = counterpart(e)
	}
	profiles, err := s.directory.Summaries(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]FollowEntry, len(edges))
	for i, e := range edges {
		id := counterpart(e)
		profile, ok := profiles[id]
		if !ok {
			profile = models.UserCompact{ID: id}
		}
		out[i] = FollowEntry{User: profile, FollowedAt: e.CreatedAt}
	}
	return out, nil
}

type likeTarget struct {
	owner     uint
	postID    string
	commentID *uint
}

func (s *ToggleStore) resolveTarget(ctx context.Context, kind models.TargetKind, targetID string) (likeTarget, error) {
	if kind == models.TargetPost {
		post, err := s.posts.GetPostByID(ctx, targetID)
		if errors.Is(err, repositories.ErrNotFound) {
			return likeTarget{}, apperr.NotFound("post")
		}
		if err != nil {
			return likeTarget{}, apperr.Internal(err)
		}
		return likeTarget{owner: post.AuthorID, postID: targetID}, nil
	}

	id, err := strconv.ParseUint(targetID, 10, 64)
	if err != nil {
		return likeTarget{}, apperr.Validation("invalid comment id")
	}
	comment, err := s.comments.GetCommentByID(ctx, uint(id))
	if errors.Is(err, repositories.ErrNotFound) {
		return likeTarget{}, apperr.NotFound("comment")
	}
	if err != nil {
		return likeTarget{}, apperr.Internal(err)
	}
	return likeTarget{owner: comment.UserID, postID: comment.PostID, commentID: &comment.ID}, nil
}

func (s *ToggleStore) count(edge, result string) {
	s.metrics.Toggles.WithLabelValues(edge, result).Inc()
}
