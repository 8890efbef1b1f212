package services

import (
	"context"

	"github.com/anonto42/vidshelf/backend/internal/models"
)

// FollowChecker answers whether followerID follows followedID
type FollowChecker interface {
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
}

// VisibleTo reports whether viewerID (nil for anonymous) may see entry.
// Public entries are visible to all, the actor and target user always see their
// entries, and followers-only entries are visible to followers of the actor.
func VisibleTo(ctx context.Context, entry *models.ActivityLog, viewerID *uint, follows FollowChecker) (bool, error) {
	if entry.Visibility == models.VisibilityPublic {
		return true, nil
	}
	if viewerID == nil {
		return false, nil
	}
	if entry.Involves(*viewerID) {
		return true, nil
	}
	if entry.Visibility != models.VisibilityFollowers || entry.ActorID == nil {
		return false, nil
	}
	return follows.IsFollowing(ctx, *viewerID, *entry.ActorID)
}
