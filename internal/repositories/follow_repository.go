package repositories

import (
	"context"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	// CreateFollow returns ErrDuplicate when the pair already exists.
	CreateFollow(ctx context.Context, follow *models.Follow) error
	// DeleteFollow reports whether an edge was removed.
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translateGormError(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where("following_id = ?", userID).
		Order("created_at DESC").Find(&follows).Error
	return follows, err
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", userID).
		Order("created_at DESC").Find(&follows).Error
	return follows, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}
