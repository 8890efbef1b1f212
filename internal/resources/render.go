package resources

import (
	"strings"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/dustin/go-humanize"
)

// Renderer carries everything a render depends on besides the record itself.
// A relation missing from Include is left out of the output; a requested relation
// that has nothing to show renders as null.
type Renderer struct {
	Now      time.Time
	ViewerID *uint
	Include  Include
	Subjects map[models.SubjectRef]*services.SubjectSummary
}

func (r Renderer) with(out map[string]any, rel string, value func() any) {
	if r.Include.Has(rel) {
		out[rel] = value()
	}
}

func compactUser(u *models.User) any {
	if u == nil {
		return nil
	}
	return u.ToCompact()
}

func (r Renderer) subject(ref models.SubjectRef) any {
	if s, ok := r.Subjects[ref]; ok && s != nil {
		return s
	}
	return nil
}

func (r Renderer) Activity(a models.ActivityLog) map[string]any {
	props := a.Props()
	others := props.OtherUsers
	if others == nil {
		others = []models.ActorIdentity{}
	}
	out := map[string]any{
		"id":               a.ID,
		"action":           a.Action,
		"action_label":     ActionLabel(a.Action),
		"subject_type":     a.SubjectType,
		"subject_id":       a.SubjectID,
		"actor_id":         a.ActorID,
		"target_user_id":   a.TargetUserID,
		"visibility":       a.Visibility,
		"aggregated_count": a.AggregatedCount,
		"properties": map[string]any{
			"subject_title": props.SubjectTitle,
			"other_users":   others,
			"extra":         props.Extra,
		},
		"created_at": a.CreatedAt,
		"updated_at": a.UpdatedAt,
		"time_ago":   RelativeTime(a.UpdatedAt, r.Now),
	}
	r.with(out, "actor", func() any { return compactUser(a.Actor) })
	r.with(out, "target_user", func() any { return compactUser(a.TargetUser) })
	r.with(out, "subject", func() any { return r.subject(a.Subject()) })
	return out
}

func (r Renderer) Activities(list []models.ActivityLog) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = r.Activity(list[i])
	}
	return out
}

// NotificationMessage is the one-line text of a notification, e.g. "Ana liked your collection: Lo-fi"
func NotificationMessage(d models.NotificationData) string {
	msg := strings.TrimSpace(d.ActorName + " " + d.Action)
	if d.SubjectTitle != "" {
		msg += ": " + d.SubjectTitle
	}
	return msg
}

func (r Renderer) Notification(n models.Notification) map[string]any {
	data := n.Data.Data()
	out := map[string]any{
		"id":           n.ID,
		"type":         n.Type,
		"type_label":   ActionLabel(n.Type),
		"message":      NotificationMessage(data),
		"data":         data,
		"subject_type": n.SubjectType,
		"subject_id":   n.SubjectID,
		"read":         n.IsRead(),
		"read_at":      n.ReadAt,
		"created_at":   n.CreatedAt,
		"time_ago":     RelativeTime(n.CreatedAt, r.Now),
	}
	r.with(out, "actor", func() any { return compactUser(n.Actor) })
	r.with(out, "subject", func() any { return r.subject(n.Subject()) })
	return out
}

func (r Renderer) Notifications(list []models.Notification) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = r.Notification(list[i])
	}
	return out
}

func (r Renderer) Share(s models.CollectionShare) map[string]any {
	a := s.Analytics.Data()
	out := map[string]any{
		"id":            s.ID,
		"collection_id": s.CollectionID,
		"user_id":       s.UserID,
		"platform":      s.Platform,
		"share_type":    s.ShareType,
		"share_url":     s.ShareURL,
		"shared_at":     s.SharedAt,
		"shared_ago":    RelativeTime(s.SharedAt, r.Now),
		"expires_at":    s.ExpiresAt,
		"is_expired":    s.IsExpiredAt(r.Now),
		"metadata":      s.Metadata,
		"analytics": map[string]any{
			"clicks":          a.Clicks,
			"views":           a.Views,
			"last_click":      a.LastClick,
			"last_view":       a.LastView,
			"engagement_rate": EngagementRate(a.Clicks, a.Views),
		},
	}
	r.with(out, "collection", func() any {
		if s.Collection == nil {
			return nil
		}
		return r.Collection(*s.Collection)
	})
	r.with(out, "user", func() any { return compactUser(s.User) })
	return out
}

func (r Renderer) Shares(list []models.CollectionShare) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = r.Share(list[i])
	}
	return out
}

func (r Renderer) Collection(c models.Collection) map[string]any {
	tags := []string(c.Tags)
	if tags == nil {
		tags = []string{}
	}
	url, _ := services.SubjectURL(models.SubjectCollection, c.Slug)
	out := map[string]any{
		"id":             c.ID,
		"user_id":        c.UserID,
		"title":          c.Title,
		"slug":           c.Slug,
		"url":            url,
		"description":    c.Description,
		"is_public":      c.IsPublic,
		"tags":           tags,
		"videos_count":   c.VideosCount,
		"likes_count":    c.LikesCount,
		"comments_count": c.CommentsCount,
		"shares_count":   c.SharesCount,
		"created_at":     c.CreatedAt,
		"updated_at":     c.UpdatedAt,
		"time_ago":       RelativeTime(c.CreatedAt, r.Now),
	}
	r.with(out, "user", func() any { return compactUser(c.User) })
	r.with(out, "videos", func() any {
		videos := make([]map[string]any, 0, len(c.Items))
		for _, item := range c.Items {
			if item.Video == nil {
				continue
			}
			v := r.Video(*item.Video)
			v["position"] = item.Position
			v["added_at"] = item.AddedAt
			videos = append(videos, v)
		}
		return videos
	})
	return out
}

func (r Renderer) Collections(list []models.Collection) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = r.Collection(list[i])
	}
	return out
}

func (r Renderer) Video(v models.Video) map[string]any {
	out := map[string]any{
		"id":                 v.ID,
		"youtube_id":         v.YouTubeID,
		"title":              v.DisplayTitle(),
		"watch_url":          "https://www.youtube.com/watch?v=" + v.YouTubeID,
		"thumbnail_url":      v.ThumbnailURL,
		"channel_title":      v.ChannelTitle,
		"category_name":      v.CategoryName,
		"duration_seconds":   v.DurationSeconds,
		"duration_formatted": v.DurationFormatted,
		"view_count":         v.ViewCount,
		"view_count_label":   humanize.Comma(v.ViewCount),
		"like_count":         v.LikeCount,
		"published_at":       v.PublishedAt,
		"enhanced":           v.EnhancedAt != nil,
	}
	if v.PublishedAt != nil {
		out["published_ago"] = RelativeTime(*v.PublishedAt, r.Now)
	}
	return out
}

// User renders a profile. Email is shown to the user themselves only.
func (r Renderer) User(u models.User) map[string]any {
	out := map[string]any{
		"id":           u.ID,
		"username":     u.Username,
		"name":         u.DisplayName(),
		"avatar_url":   u.AvatarURL,
		"created_at":   u.CreatedAt,
		"member_since": RelativeTime(u.CreatedAt, r.Now),
	}
	if r.ViewerID != nil && *r.ViewerID == u.ID {
		out["email"] = u.Email
	}
	r.with(out, "profile", func() any {
		return map[string]any{
			"followers_count": u.FollowersCount,
			"following_count": u.FollowingCount,
			"followers_label": humanize.Comma(int64(u.FollowersCount)),
		}
	})
	return out
}

func (r Renderer) Users(list []models.User) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = r.User(list[i])
	}
	return out
}

// Comment always embeds its author; comments are listed with the user preloaded
func (r Renderer) Comment(c models.Comment) map[string]any {
	return map[string]any{
		"id":               c.ID,
		"commentable_type": c.CommentableType,
		"commentable_id":   c.CommentableID,
		"body":             c.Body,
		"user":             compactUser(c.User),
		"created_at":       c.CreatedAt,
		"time_ago":         RelativeTime(c.CreatedAt, r.Now),
	}
}

func (r Renderer) Comments(list []models.Comment) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = r.Comment(list[i])
	}
	return out
}
