package models

import "time"

// Like represents a like on a collection, video or comment. One per user and target.
type Like struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserID       uint        `json:"user_id" gorm:"not null;uniqueIndex:idx_like_unique"`
	User         *User       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	LikeableType SubjectType `json:"likeable_type" gorm:"size:20;not null;uniqueIndex:idx_like_unique;index:idx_likeable"`
	LikeableID   uint        `json:"likeable_id" gorm:"not null;uniqueIndex:idx_like_unique;index:idx_likeable"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (l Like) Likeable() SubjectRef {
	return Ref(l.LikeableType, l.LikeableID)
}
