package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/nano-midea/interactions/internal/apperr"
	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
)

// Comments stores comments on posts and notifies the post's author.
type Comments struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	notifier *InteractionNotifier
}

func NewComments(posts repositories.PostRepository, comments repositories.CommentRepository, notifier *InteractionNotifier) *Comments {
	return &Comments{posts: posts, comments: comments, notifier: notifier}
}

func (s *Comments) Create(ctx context.Context, user uint, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("comment content is required")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("post")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	comment := &models.Comment{PostID: postID, UserID: user, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, apperr.Internal(err)
	}
	_ = s.notifier.Commented(ctx, user, post.AuthorID, postID, comment.ID)
	return comment, nil
}
