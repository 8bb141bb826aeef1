package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"gorm.io/gorm"
)

// CommentRepository resolves comments so likes and notifications can find their owner.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
}

type postgresCommentRepository struct {
	db *gorm.DB
}

func NewPostgresCommentRepository(db *gorm.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translateGormError(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *postgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &comment, nil
}
