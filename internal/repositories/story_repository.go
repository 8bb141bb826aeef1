package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-midea/interactions/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StoryRepository defines the interface for story operations
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStoryByID(ctx context.Context, id string) (*models.Story, error)
	// GetStoriesByAuthors returns stories created after since, newest first.
	GetStoriesByAuthors(ctx context.Context, authorIDs []uint, since time.Time) ([]models.Story, error)
	// AddViewer adds viewerID to the story's view set. Returns ErrNotFound for unknown stories.
	AddViewer(ctx context.Context, storyID string, viewerID uint) error
}

type mongoStoryRepository struct {
	collection *mongo.Collection
}

func NewMongoStoryRepository(db *mongo.Database) StoryRepository {
	return &mongoStoryRepository{collection: db.Collection("stories")}
}

func (r *mongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	if story.Views == nil {
		story.Views = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

func (r *mongoStoryRepository) GetStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid story ID format: %w", ErrNotFound)
	}
	var story models.Story
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&story); err != nil {
		return nil, translateMongoError(err)
	}
	return &story, nil
}

func (r *mongoStoryRepository) GetStoriesByAuthors(ctx context.Context, authorIDs []uint, since time.Time) ([]models.Story, error) {
	stories := []models.Story{}
	if len(authorIDs) == 0 {
		return stories, nil
	}
	filter := bson.M{
		"author_id":  bson.M{"$in": authorIDs},
		"created_at": bson.M{"$gt": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// AddViewer relies on $addToSet so concurrent views of the same story by the same user collapse.
func (r *mongoStoryRepository) AddViewer(ctx context.Context, storyID string, viewerID uint) error {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return fmt.Errorf("invalid story ID format: %w", ErrNotFound)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$addToSet": bson.M{"views": viewerID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
