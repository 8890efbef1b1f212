package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoMetadata is the raw YouTube Data API payload for a video, stored in MongoDB
type VideoMetadata struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VideoID   uint               `json:"video_id" bson:"video_id"`
	YouTubeID string             `json:"youtube_id" bson:"youtube_id"`
	Payload   map[string]any     `json:"payload" bson:"payload"`
	FetchedAt time.Time          `json:"fetched_at" bson:"fetched_at"`
}
