package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// CreateLike returns ErrDuplicate when the user already likes the target.
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, userID uint, kind models.TargetKind, targetID string) (bool, error)
	HasUserLiked(ctx context.Context, userID uint, kind models.TargetKind, targetID string) (bool, error)
	GetLikesCount(ctx context.Context, kind models.TargetKind, targetID string) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return translateGormError(r.db.WithContext(ctx).Create(like).Error)
}

// DeleteLike deletes a like from PostgreSQL
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, userID uint, kind models.TargetKind, targetID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, kind, targetID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasUserLiked checks if a user has liked a specific target
func (r *PostgresLikeRepository) HasUserLiked(ctx context.Context, userID uint, kind models.TargetKind, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, kind, targetID).
		Count(&count).Error
	return count > 0, err
}

// GetLikesCount retrieves the count of likes for a target
func (r *PostgresLikeRepository) GetLikesCount(ctx context.Context, kind models.TargetKind, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", kind, targetID).
		Count(&count).Error
	return count, err
}
