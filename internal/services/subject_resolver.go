package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
)

// SubjectSummary is the display-ready view of a polymorphic reference
type SubjectSummary struct {
	Ref     models.SubjectRef `json:"-"`
	Type    string            `json:"type"`
	ID      uint              `json:"id"`
	Title   string            `json:"title"`
	URL     string            `json:"url,omitempty"`
	OwnerID *uint             `json:"-"`
}

// SubjectResolver turns (type, id) pairs into summaries. It never fails a caller:
// unknown kinds and missing rows resolve to absent.
type SubjectResolver struct {
	collections repositories.CollectionRepository
	videos      repositories.VideoRepository
	comments    repositories.CommentRepository
	users       repositories.UserRepository
}

func NewSubjectResolver(
	collections repositories.CollectionRepository,
	videos repositories.VideoRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
) *SubjectResolver {
	return &SubjectResolver{collections: collections, videos: videos, comments: comments, users: users}
}

// SubjectURL is the canonical path of a subject. key is the slug for collections,
// the username for users and the numeric id otherwise.
func SubjectURL(t models.SubjectType, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	switch t {
	case models.SubjectCollection:
		return "/collections/" + url.PathEscape(key), true
	case models.SubjectVideo:
		return "/videos/" + url.PathEscape(key), true
	case models.SubjectComment:
		return "/comments/" + url.PathEscape(key), true
	case models.SubjectUser:
		return "/users/" + url.PathEscape(key), true
	}
	return "", false
}

// Resolve looks the subject up. The bool is false when the kind is unknown or the row is gone.
func (r *SubjectResolver) Resolve(ctx context.Context, ref models.SubjectRef) (*SubjectSummary, bool) {
	s, err := r.resolve(ctx, ref)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("subject", ref.String()).Msg("subject lookup failed")
		}
		return nil, false
	}
	if s == nil {
		return nil, false
	}
	s.Ref = ref
	s.Type = string(ref.Type)
	s.ID = ref.ID
	return s, true
}

// ResolveAll resolves each distinct ref once. Absent subjects are left out of the map.
func (r *SubjectResolver) ResolveAll(ctx context.Context, refs []models.SubjectRef) map[models.SubjectRef]*SubjectSummary {
	out := make(map[models.SubjectRef]*SubjectSummary, len(refs))
	seen := make(map[models.SubjectRef]bool, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if s, ok := r.Resolve(ctx, ref); ok {
			out[ref] = s
		}
	}
	return out
}

func (r *SubjectResolver) resolve(ctx context.Context, ref models.SubjectRef) (*SubjectSummary, error) {
	idKey := fmt.Sprint(ref.ID)
	switch ref.Type {
	case models.SubjectCollection:
		c, err := r.collections.GetCollectionByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		u, _ := SubjectURL(ref.Type, c.Slug)
		owner := c.UserID
		return &SubjectSummary{Title: c.Title, URL: u, OwnerID: &owner}, nil
	case models.SubjectVideo:
		v, err := r.videos.GetVideoByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		u, _ := SubjectURL(ref.Type, idKey)
		return &SubjectSummary{Title: v.DisplayTitle(), URL: u}, nil
	case models.SubjectComment:
		c, err := r.comments.GetCommentByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		u, _ := SubjectURL(ref.Type, idKey)
		owner := c.UserID
		return &SubjectSummary{Title: excerpt(c.Body, 80), URL: u, OwnerID: &owner}, nil
	case models.SubjectUser:
		usr, err := r.users.GetUserByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		u, _ := SubjectURL(ref.Type, usr.Username)
		owner := usr.ID
		return &SubjectSummary{Title: usr.DisplayName(), URL: u, OwnerID: &owner}, nil
	}
	return nil, nil
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
