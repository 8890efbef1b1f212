package models

import (
	"time"

	"gorm.io/datatypes"
)

const NotificationDataVersion = 1

// NotificationData is denormalised at dispatch so a notification renders after its actor or subject is gone.
type NotificationData struct {
	Version      int            `json:"version"`
	Action       string         `json:"action"`
	ActorName    string         `json:"actor_name,omitempty"`
	SubjectTitle string         `json:"subject_title,omitempty"`
	SubjectType  SubjectType    `json:"subject_type,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID             uint                                 `json:"id" gorm:"primaryKey"`
	RecipientID    uint                                 `json:"recipient_id" gorm:"not null;index:idx_notification_recipient"`
	Recipient      *User                                `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	NotifiableType SubjectType                          `json:"notifiable_type" gorm:"size:20;not null"`
	NotifiableID   uint                                 `json:"notifiable_id" gorm:"not null"`
	Type           string                               `json:"type" gorm:"size:40;not null;index"`
	ActorID        *uint                                `json:"actor_id" gorm:"index"`
	Actor          *User                                `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	SubjectType    SubjectType                          `json:"subject_type" gorm:"size:20;index:idx_notification_subject"`
	SubjectID      uint                                 `json:"subject_id" gorm:"index:idx_notification_subject"`
	Data           datatypes.JSONType[NotificationData] `json:"data"`
	ReadAt         *time.Time                           `json:"read_at" gorm:"index"`
	CreatedAt      time.Time                            `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time                            `json:"updated_at"`
}

func (n Notification) Subject() SubjectRef {
	return Ref(n.SubjectType, n.SubjectID)
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
