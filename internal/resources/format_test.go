package resources

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActionLabel(t *testing.T) {
	assert.Equal(t, "Liked a collection", ActionLabel("collection.liked"))
	assert.Equal(t, "New Follower", ActionLabel("user_followed"))
	assert.Equal(t, "Foo Bar Baz", ActionLabel("foo.bar_baz"))
	assert.Equal(t, "Playlist Reordered", ActionLabel("playlist-reordered"))
	assert.Equal(t, "Playlist Synced", ActionLabel("playlist:synced"))
	assert.Equal(t, "Foo Bar Baz", ActionLabel("foo..bar_-baz"))
	assert.Equal(t, "", ActionLabel(""))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 hours ago", RelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "1 minute ago", RelativeTime(now.Add(-time.Minute), now))
	assert.Equal(t, "2 days from now", RelativeTime(now.Add(48*time.Hour), now))
	assert.Equal(t, "", RelativeTime(time.Time{}, now))

	// recomputed for every render
	then := now.Add(-3 * time.Hour)
	assert.NotEqual(t, RelativeTime(then, now), RelativeTime(then, now.Add(24*time.Hour)))
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 0.0, EngagementRate(0, 0))
	assert.Equal(t, 0.0, EngagementRate(5, 0))
	assert.Equal(t, 20.0, EngagementRate(10, 50))
	assert.Equal(t, 33.33, EngagementRate(1, 3))
	assert.Equal(t, 66.67, EngagementRate(2, 3))

	for clicks := 0; clicks < 20; clicks++ {
		for views := 0; views < 20; views++ {
			r := EngagementRate(clicks, views)
			assert.False(t, math.IsNaN(r) || math.IsInf(r, 0), "%d/%d", clicks, views)
		}
	}
}

func TestParseInclude(t *testing.T) {
	inc := ParseInclude(" Actor, subject,,")
	assert.True(t, inc.Has("actor"))
	assert.True(t, inc.Has("subject"))
	assert.False(t, inc.Has("target_user"))
	assert.Len(t, inc, 2)
	assert.Empty(t, ParseInclude(""))
}
