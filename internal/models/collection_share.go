package models

import (
	"time"

	"gorm.io/datatypes"
)

type SharePlatform string

const (
	PlatformTwitter  SharePlatform = "twitter"
	PlatformFacebook SharePlatform = "facebook"
	PlatformLinkedIn SharePlatform = "linkedin"
	PlatformEmail    SharePlatform = "email"
	PlatformLink     SharePlatform = "link"
	PlatformIframe   SharePlatform = "iframe"
)

func (p SharePlatform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformFacebook, PlatformLinkedIn, PlatformEmail, PlatformLink, PlatformIframe:
		return true
	}
	return false
}

type ShareType string

const (
	SharePublic    ShareType = "public"
	SharePrivate   ShareType = "private"
	ShareTemporary ShareType = "temporary"
)

func (t ShareType) Valid() bool {
	return t == SharePublic || t == SharePrivate || t == ShareTemporary
}

// ShareAnalytics counts interactions with a share link
type ShareAnalytics struct {
	Clicks    int        `json:"clicks"`
	Views     int        `json:"views"`
	LastClick *time.Time `json:"last_click,omitempty"`
	LastView  *time.Time `json:"last_view,omitempty"`
}

// CollectionShare records one share of a collection to a platform.
// ExpiresAt is set only for temporary shares.
type CollectionShare struct {
	ID           uint                               `json:"id" gorm:"primaryKey"`
	CollectionID uint                               `json:"collection_id" gorm:"not null;index"`
	Collection   *Collection                        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID       *uint                              `json:"user_id" gorm:"index"`
	User         *User                              `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Platform     SharePlatform                      `json:"platform" gorm:"size:16;not null"`
	ShareURL     string                             `json:"share_url" gorm:"not null"`
	ShareType    ShareType                          `json:"share_type" gorm:"size:16;not null"`
	Token        *string                            `json:"-" gorm:"size:64;uniqueIndex"`
	SharedAt     time.Time                          `json:"shared_at"`
	ExpiresAt    *time.Time                         `json:"expires_at"`
	Metadata     datatypes.JSONMap                  `json:"metadata"`
	Analytics    datatypes.JSONType[ShareAnalytics] `json:"analytics"`
	Version      int                                `json:"-" gorm:"not null;default:1"`
	CreatedAt    time.Time                          `json:"created_at"`
	UpdatedAt    time.Time                          `json:"updated_at"`
}

// IsExpiredAt reports whether the share had an expiry that passed before now
func (s CollectionShare) IsExpiredAt(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

func (s CollectionShare) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

type CreateShareRequest struct {
	Platform  SharePlatform  `json:"platform" validate:"required,oneof=twitter facebook linkedin email link iframe"`
	ShareType ShareType      `json:"share_type" validate:"required,oneof=public private temporary"`
	TTLHours  int            `json:"ttl_hours" validate:"omitempty,min=1,max=720"`
	Metadata  map[string]any `json:"metadata"`
}
