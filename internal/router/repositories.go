package router

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"github.com/anonto42/nano-midea/interactions/internal/repositories"
	"github.com/anonto42/nano-midea/interactions/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repositories is every store the services read and write.
type Repositories struct {
	Users         repositories.UserRepository
	Follows       repositories.FollowRepository
	Likes         repositories.LikeRepository
	Notifications repositories.NotificationRepository
	Comments      repositories.CommentRepository
	Posts         repositories.PostRepository
	Stories       repositories.StoryRepository
	Messages      repositories.MessageRepository
}

// SQLRepositories keeps relational edges in PostgreSQL and documents in MongoDB.
func SQLRepositories(pgdb *gorm.DB, mdb *mongo.Database) Repositories {
	return Repositories{
		Users:         repositories.NewPostgresUserRepository(pgdb),
		Follows:       repositories.NewPostgresFollowRepository(pgdb),
		Likes:         repositories.NewPostgresLikeRepository(pgdb),
		Notifications: repositories.NewPostgresNotificationRepository(pgdb),
		Comments:      repositories.NewPostgresCommentRepository(pgdb),
		Posts:         repositories.NewMongoPostRepository(mdb),
		Stories:       repositories.NewMongoStoryRepository(mdb),
		Messages:      repositories.NewMongoMessageRepository(mdb),
	}
}

// MemoryRepositories keeps everything in process memory.
func MemoryRepositories() Repositories {
	return Repositories{
		Users:         memory.NewUserRepository(),
		Follows:       memory.NewFollowRepository(),
		Likes:         memory.NewLikeRepository(),
		Notifications: memory.NewNotificationRepository(),
		Comments:      memory.NewCommentRepository(),
		Posts:         memory.NewPostRepository(),
		Stories:       memory.NewStoryRepository(),
		Messages:      memory.NewMessageRepository(),
	}
}

// Migrate creates the relational tables and the document indexes.
func Migrate(ctx context.Context, pgdb *gorm.DB, mdb *mongo.Database) error {
	err := pgdb.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	if err := repositories.EnsureMongoIndexes(ctx, mdb); err != nil {
		return fmt.Errorf("failed to create mongo indexes: %w", err)
	}
	return nil
}
