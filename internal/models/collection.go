package models

import (
	"time"

	"gorm.io/datatypes"
)

// Collection is a user-curated, ordered list of YouTube videos
type Collection struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	UserID        uint                        `json:"user_id" gorm:"index;not null"`
	User          *User                       `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Title         string                      `json:"title" gorm:"size:150;not null"`
	Slug          string                      `json:"slug" gorm:"size:180;uniqueIndex;not null"`
	Description   string                      `json:"description"`
	IsPublic      bool                        `json:"is_public" gorm:"not null"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	VideosCount   int                         `json:"videos_count" gorm:"not null;default:0"`
	LikesCount    int                         `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int                         `json:"comments_count" gorm:"not null;default:0"`
	SharesCount   int                         `json:"shares_count" gorm:"not null;default:0"`
	Items         []CollectionVideo           `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// CollectionVideo places a video at a position inside a collection
type CollectionVideo struct {
	CollectionID uint      `json:"collection_id" gorm:"primaryKey"`
	VideoID      uint      `json:"video_id" gorm:"primaryKey"`
	Video        *Video    `json:"video,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Position     int       `json:"position" gorm:"not null"`
	AddedAt      time.Time `json:"added_at"`
}

type CreateCollectionRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=150"`
	Description string   `json:"description" validate:"max=2000"`
	IsPublic    *bool    `json:"is_public"`
	Tags        []string `json:"tags" validate:"max=20,dive,min=1,max=40"`
}

type AddVideoRequest struct {
	YouTubeID string `json:"youtube_id" validate:"required,min=6,max=20"`
}
