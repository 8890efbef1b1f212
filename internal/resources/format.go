// Package resources shapes stored records into the JSON documents served by the API.
// Rendering is pure: the current time and the eagerly loaded relations are passed in.
package resources

import (
	"math"
	"strings"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var actionLabels = map[string]string{
	"collection.created":     "Created a collection",
	"collection.video_added": "Added a video to a collection",
	"collection.shared":      "Shared a collection",
	"collection.liked":       "Liked a collection",
	"collection.commented":   "Commented on a collection",
	"video.liked":            "Liked a video",
	"video.commented":        "Commented on a video",
	"comment.liked":          "Liked a comment",
	"user.followed":          "Followed a user",

	"collection_liked":     "Collection Liked",
	"collection_commented": "New Comment",
	"collection_shared":    "Collection Shared",
	"comment_liked":        "Comment Liked",
	"user_followed":        "New Follower",
}

// ActionLabel is the display label of an activity action or notification type.
// Unknown tags are humanized: "foo.bar_baz" becomes "Foo Bar Baz".
func ActionLabel(tag string) string {
	if l, ok := actionLabels[tag]; ok {
		return l
	}
	// Casers are stateful, one per call.
	return cases.Title(language.English).String(strings.Join(models.TagWords(tag), " "))
}

// RelativeTime renders t relative to now, e.g. "3 hours ago"
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// EngagementRate is clicks per hundred views rounded to two decimals, zero without views
func EngagementRate(clicks, views int) float64 {
	if views <= 0 || clicks <= 0 {
		return 0
	}
	return math.Round(float64(clicks)/float64(views)*100*100) / 100
}

// Include lists the relations a caller loaded and wants rendered
type Include map[string]bool

// ParseInclude reads a comma separated ?include= value
func ParseInclude(raw string) Include {
	inc := Include{}
	for _, rel := range strings.Split(raw, ",") {
		if rel = strings.ToLower(strings.TrimSpace(rel)); rel != "" {
			inc[rel] = true
		}
	}
	return inc
}

func NewInclude(rels ...string) Include {
	inc := make(Include, len(rels))
	for _, r := range rels {
		inc[r] = true
	}
	return inc
}

func (i Include) Has(rel string) bool {
	return i[rel]
}
