package models

import "time"

// Comment represents a comment on a collection or a video
type Comment struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          uint        `json:"user_id" gorm:"index;not null"`
	User            *User       `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CommentableType SubjectType `json:"commentable_type" gorm:"size:20;index:idx_commentable"`
	CommentableID   uint        `json:"commentable_id" gorm:"index:idx_commentable"`
	Body            string      `json:"body" gorm:"not null"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (c Comment) Commentable() SubjectRef {
	return Ref(c.CommentableType, c.CommentableID)
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=1000"`
}
