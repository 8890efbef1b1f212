package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityPropertiesVersion is bumped whenever ActivityProperties changes shape
const ActivityPropertiesVersion = 1

// ActorIdentity is the denormalised identity of a user folded into an aggregated entry
type ActorIdentity struct {
	ID       uint   `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
}

// ActivityProperties is the typed context stored with an activity entry.
// Extra carries fields the producer could not know ahead of time.
type ActivityProperties struct {
	Version      int             `json:"version"`
	SubjectTitle string          `json:"subject_title,omitempty"`
	IP           string          `json:"ip,omitempty"`
	UserAgent    string          `json:"user_agent,omitempty"`
	OtherUsers   []ActorIdentity `json:"other_users,omitempty"`
	Extra        map[string]any  `json:"extra,omitempty"`
}

// HasOtherUser reports whether id was already folded in as a non-primary actor
func (p ActivityProperties) HasOtherUser(id uint) bool {
	for _, u := range p.OtherUsers {
		if u.ID == id {
			return true
		}
	}
	return false
}

// ActivityLog is one feed entry. Repeated actions on the same subject within the
// aggregation window fold into it, bumping AggregatedCount.
type ActivityLog struct {
	ID              uint                                   `json:"id" gorm:"primaryKey"`
	ActorID         *uint                                  `json:"actor_id" gorm:"index"`
	Actor           *User                                  `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	Action          string                                 `json:"action" gorm:"size:64;not null;index"`
	SubjectType     SubjectType                            `json:"subject_type" gorm:"size:20;not null;index:idx_activity_subject"`
	SubjectID       uint                                   `json:"subject_id" gorm:"not null;index:idx_activity_subject"`
	TargetUserID    *uint                                  `json:"target_user_id" gorm:"index"`
	TargetUser      *User                                  `json:"-" gorm:"foreignKey:TargetUserID;constraint:OnDelete:SET NULL"`
	Properties      datatypes.JSONType[ActivityProperties] `json:"properties"`
	Visibility      Visibility                             `json:"visibility" gorm:"size:16;not null;default:public;index"`
	AggregatedCount int                                    `json:"aggregated_count" gorm:"not null;default:1"`
	// AggregationKey is set while the entry still accepts folds and cleared once it is closed.
	AggregationKey *string   `json:"-" gorm:"size:255;uniqueIndex"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a ActivityLog) Subject() SubjectRef {
	return Ref(a.SubjectType, a.SubjectID)
}

func (a ActivityLog) Props() ActivityProperties {
	return a.Properties.Data()
}

// Involves reports whether userID is the entry's actor or target user
func (a ActivityLog) Involves(userID uint) bool {
	return (a.ActorID != nil && *a.ActorID == userID) || (a.TargetUserID != nil && *a.TargetUserID == userID)
}

// HasFolded reports whether userID already contributed to this entry
func (a ActivityLog) HasFolded(userID uint) bool {
	if a.ActorID != nil && *a.ActorID == userID {
		return true
	}
	return a.Props().HasOtherUser(userID)
}
