package models

import "time"

// Video is a YouTube video known to the platform. Fields past YouTubeID are filled in by enhancement.
type Video struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	YouTubeID         string     `json:"youtube_id" gorm:"column:youtube_id;size:20;uniqueIndex;not null"`
	Title             string     `json:"title" gorm:"size:255"`
	Description       string     `json:"description,omitempty"`
	ThumbnailURL      string     `json:"thumbnail_url,omitempty"`
	ChannelID         string     `json:"channel_id,omitempty" gorm:"size:64"`
	ChannelTitle      string     `json:"channel_title,omitempty"`
	CategoryID        string     `json:"category_id,omitempty" gorm:"size:16"`
	CategoryName      string     `json:"category_name,omitempty"`
	DurationSeconds   int        `json:"duration_seconds"`
	DurationFormatted string     `json:"duration_formatted,omitempty" gorm:"size:16"`
	ViewCount         int64      `json:"view_count"`
	LikeCount         int64      `json:"like_count"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	EnhancedAt        *time.Time `json:"enhanced_at,omitempty" gorm:"index"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DisplayTitle falls back to the YouTube id for videos not yet enhanced
func (v Video) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.YouTubeID
}
