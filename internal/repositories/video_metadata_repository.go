package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoMetadataRepository stores raw YouTube payloads, one document per video
type VideoMetadataRepository interface {
	Upsert(ctx context.Context, meta *models.VideoMetadata) error
	GetByYouTubeID(ctx context.Context, youtubeID string) (*models.VideoMetadata, error)
	Delete(ctx context.Context, youtubeID string) error
}

// MongoVideoMetadataRepository implements VideoMetadataRepository for MongoDB
type MongoVideoMetadataRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoMetadataRepository creates a new MongoVideoMetadataRepository
func NewMongoVideoMetadataRepository(db *mongo.Database) *MongoVideoMetadataRepository {
	return &MongoVideoMetadataRepository{collection: db.Collection("video_metadata")}
}

// EnsureIndexes creates the unique youtube_id index
func (r *MongoVideoMetadataRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "youtube_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Upsert replaces the document for meta.YouTubeID, creating it when absent
func (r *MongoVideoMetadataRepository) Upsert(ctx context.Context, meta *models.VideoMetadata) error {
	if meta.FetchedAt.IsZero() {
		meta.FetchedAt = time.Now()
	}
	update := bson.M{
		"$set": bson.M{
			"video_id":   meta.VideoID,
			"youtube_id": meta.YouTubeID,
			"payload":    meta.Payload,
			"fetched_at": meta.FetchedAt,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"youtube_id": meta.YouTubeID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoVideoMetadataRepository) GetByYouTubeID(ctx context.Context, youtubeID string) (*models.VideoMetadata, error) {
	var meta models.VideoMetadata
	err := r.collection.FindOne(ctx, bson.M{"youtube_id": youtubeID}).Decode(&meta)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &meta, nil
}

func (r *MongoVideoMetadataRepository) Delete(ctx context.Context, youtubeID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"youtube_id": youtubeID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
