package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/vidshelf/backend/internal/metrics"
	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/google/uuid"
)

// Action tags written to the activity log
const (
	ActionCollectionCreated    = "collection.created"
	ActionCollectionVideoAdded = "collection.video_added"
	ActionCollectionShared     = "collection.shared"
	ActionUserFollowed         = "user.followed"
)

// EngagementService runs user actions: it writes the primary record, then feeds the
// activity log and the notification dispatcher. Those two never undo the primary write.
type EngagementService struct {
	collections repositories.CollectionRepository
	videos      repositories.VideoRepository
	comments    repositories.CommentRepository
	likes       repositories.LikeRepository
	follows     repositories.FollowRepository
	users       repositories.UserRepository
	resolver    *SubjectResolver
	activity    *ActivityService
	notifier    *NotificationService
}

// EngagementDeps groups the collaborators of EngagementService
type EngagementDeps struct {
	Collections   repositories.CollectionRepository
	Videos        repositories.VideoRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	Follows       repositories.FollowRepository
	Users         repositories.UserRepository
	Resolver      *SubjectResolver
	Activity      *ActivityService
	Notifications *NotificationService
}

func NewEngagementService(d EngagementDeps) *EngagementService {
	return &EngagementService{
		collections: d.Collections,
		videos:      d.Videos,
		comments:    d.Comments,
		likes:       d.Likes,
		follows:     d.Follows,
		users:       d.Users,
		resolver:    d.Resolver,
		activity:    d.Activity,
		notifier:    d.Notifications,
	}
}

// target is a resolved subject plus the audience its activity should have
type target struct {
	summary    *SubjectSummary
	visibility models.Visibility
}

// loadTarget resolves ref for actorID. Private collections of other users behave as missing,
// and so does everything hanging off them.
func (s *EngagementService) loadTarget(ctx context.Context, actorID uint, ref models.SubjectRef) (*target, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubject, ref)
	}
	if ref.Type == models.SubjectCollection {
		c, err := s.collectionFor(ctx, actorID, ref.ID)
		if err != nil {
			return nil, err
		}
		url, _ := SubjectURL(ref.Type, c.Slug)
		owner := c.UserID
		return &target{
			summary:    &SubjectSummary{Ref: ref, Type: string(ref.Type), ID: ref.ID, Title: c.Title, URL: url, OwnerID: &owner},
			visibility: collectionVisibility(c),
		}, nil
	}

	visibility := models.VisibilityPublic
	if ref.Type == models.SubjectComment {
		comment, err := s.comments.GetCommentByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if comment.CommentableType == models.SubjectCollection {
			c, err := s.collectionFor(ctx, actorID, comment.CommentableID)
			if err != nil {
				return nil, err
			}
			visibility = collectionVisibility(c)
		}
	}
	summary, ok := s.resolver.Resolve(ctx, ref)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &target{summary: summary, visibility: visibility}, nil
}

// CanSee returns repositories.ErrNotFound when ref is missing or hidden from viewerID
// (0 for anonymous viewers)
func (s *EngagementService) CanSee(ctx context.Context, viewerID uint, ref models.SubjectRef) error {
	_, err := s.loadTarget(ctx, viewerID, ref)
	return err
}

// collectionFor loads a collection actorID may see
func (s *EngagementService) collectionFor(ctx context.Context, actorID, id uint) (*models.Collection, error) {
	c, err := s.collections.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsPublic && c.UserID != actorID {
		return nil, repositories.ErrNotFound
	}
	return c, nil
}

func collectionVisibility(c *models.Collection) models.Visibility {
	if c.IsPublic {
		return models.VisibilityPublic
	}
	return models.VisibilityPrivate
}

// fanOut records the activity and notifies the subject owner. Failures are logged only.
func (s *EngagementService) fanOut(ctx context.Context, rec RecordInput, notifyType string, t *target) {
	log := logging.Ctx(ctx)
	if t != nil && t.summary != nil {
		rec.Properties.SubjectTitle = t.summary.Title
	}
	if _, err := s.activity.Record(ctx, rec); err != nil {
		metrics.SideEffectFailures.WithLabelValues("activity").Inc()
		log.Warn().Err(err).Str("action", rec.Action).Str("subject", rec.Subject.String()).Msg("activity not recorded")
	}
	if notifyType == "" || rec.TargetUserID == nil {
		return
	}
	in := NotifyInput{
		RecipientID: *rec.TargetUserID,
		ActorID:     rec.ActorID,
		Type:        notifyType,
		Subject:     rec.Subject,
	}
	if t != nil && t.summary != nil {
		in.SubjectTitle = t.summary.Title
	}
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		metrics.SideEffectFailures.WithLabelValues("notification").Inc()
		log.Warn().Err(err).Str("type", notifyType).Msg("notification not dispatched")
	}
}

// CreateCollection stores a new collection under a unique slug derived from its title.
func (s *EngagementService) CreateCollection(ctx context.Context, ownerID uint, req models.CreateCollectionRequest) (*models.Collection, error) {
	public := true
	if req.IsPublic != nil {
		public = *req.IsPublic
	}
	c := &models.Collection{
		UserID:      ownerID,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    public,
		Tags:        req.Tags,
	}

	base := Slugify(req.Title)
	for attempt := 0; attempt < 3; attempt++ {
		c.Slug = base
		if attempt > 0 {
			c.Slug = base + "-" + uuid.NewString()[:8]
		}
		err := s.collections.CreateCollection(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrConflict) || attempt == 2 {
			return nil, err
		}
		c.ID = 0
	}

	s.fanOut(ctx, RecordInput{
		ActorID:    &ownerID,
		Action:     ActionCollectionCreated,
		Subject:    models.Ref(models.SubjectCollection, c.ID),
		Visibility: collectionVisibility(c),
		Properties: models.ActivityProperties{SubjectTitle: c.Title},
	}, "", nil)
	return c, nil
}

// DeleteCollection removes a collection owned by actorID
func (s *EngagementService) DeleteCollection(ctx context.Context, actorID, collectionID uint) error {
	c, err := s.collections.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return err
	}
	if c.UserID != actorID {
		return ErrForbidden
	}
	return s.collections.DeleteCollection(ctx, collectionID)
}

// AddVideo appends a YouTube video to the actor's collection
func (s *EngagementService) AddVideo(ctx context.Context, actorID, collectionID uint, youtubeID string) (*models.CollectionVideo, error) {
	c, err := s.collections.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if c.UserID != actorID {
		return nil, ErrForbidden
	}
	video, err := s.videos.FindOrCreateVideo(ctx, youtubeID)
	if err != nil {
		return nil, err
	}
	item, err := s.collections.AddVideo(ctx, collectionID, video.ID)
	if errors.Is(err, repositories.ErrConflict) {
		return nil, fmt.Errorf("%w: video %s is already in the collection", ErrAlreadyExists, youtubeID)
	}
	if err != nil {
		return nil, err
	}
	item.Video = video

	s.fanOut(ctx, RecordInput{
		ActorID:    &actorID,
		Action:     ActionCollectionVideoAdded,
		Subject:    models.Ref(models.SubjectCollection, c.ID),
		Visibility: collectionVisibility(c),
		Properties: models.ActivityProperties{
			SubjectTitle: c.Title,
			Extra:        map[string]any{"youtube_id": youtubeID, "video_id": video.ID},
		},
	}, "", nil)
	return item, nil
}

// Like records actorID liking a collection, video or comment
func (s *EngagementService) Like(ctx context.Context, actorID uint, ref models.SubjectRef) (*models.Like, error) {
	if ref.Type == models.SubjectUser {
		return nil, fmt.Errorf("%w: users cannot be liked", ErrInvalidSubject)
	}
	t, err := s.loadTarget(ctx, actorID, ref)
	if err != nil {
		return nil, err
	}

	like := &models.Like{UserID: actorID, LikeableType: ref.Type, LikeableID: ref.ID}
	if err := s.likes.CreateLike(ctx, like); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, fmt.Errorf("%w: already liked", ErrAlreadyExists)
		}
		return nil, err
	}
	if ref.Type == models.SubjectCollection {
		if err := s.collections.AdjustCounter(ctx, ref.ID, repositories.CounterLikes, 1); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("likes counter not updated")
		}
	}

	notifyType := ""
	switch ref.Type {
	case models.SubjectCollection:
		notifyType = NotifyCollectionLiked
	case models.SubjectComment:
		notifyType = NotifyCommentLiked
	}
	s.fanOut(ctx, RecordInput{
		ActorID:      &actorID,
		Action:       string(ref.Type) + ".liked",
		Subject:      ref,
		TargetUserID: t.summary.OwnerID,
		Visibility:   t.visibility,
	}, notifyType, t)
	return like, nil
}

// Unlike removes the like only; the activity entry stays in the log
func (s *EngagementService) Unlike(ctx context.Context, actorID uint, ref models.SubjectRef) error {
	if !ref.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSubject, ref)
	}
	if err := s.likes.DeleteLike(ctx, actorID, ref); err != nil {
		return err
	}
	if ref.Type == models.SubjectCollection {
		if err := s.collections.AdjustCounter(ctx, ref.ID, repositories.CounterLikes, -1); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("likes counter not updated")
		}
	}
	return nil
}

// Comment adds a comment to a collection or video
func (s *EngagementService) Comment(ctx context.Context, actorID uint, ref models.SubjectRef, body string) (*models.Comment, error) {
	if ref.Type != models.SubjectCollection && ref.Type != models.SubjectVideo {
		return nil, fmt.Errorf("%w: only collections and videos take comments", ErrInvalidSubject)
	}
	t, err := s.loadTarget(ctx, actorID, ref)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: actorID, CommentableType: ref.Type, CommentableID: ref.ID, Body: body}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	notifyType := ""
	if ref.Type == models.SubjectCollection {
		notifyType = NotifyCollectionCommented
		if err := s.collections.AdjustCounter(ctx, ref.ID, repositories.CounterComments, 1); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("comments counter not updated")
		}
	}
	s.fanOut(ctx, RecordInput{
		ActorID:      &actorID,
		Action:       string(ref.Type) + ".commented",
		Subject:      ref,
		TargetUserID: t.summary.OwnerID,
		Visibility:   t.visibility,
		Properties:   models.ActivityProperties{Extra: map[string]any{"comment_id": comment.ID}},
	}, notifyType, t)
	return comment, nil
}

// Follow makes actorID follow targetID
func (s *EngagementService) Follow(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return ErrSelfAction
	}
	followed, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.follows.CreateFollow(ctx, &models.Follow{FollowerID: actorID, FollowingID: targetID}); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("%w: already following", ErrAlreadyExists)
		}
		return err
	}
	if err := s.users.AdjustFollowCounts(ctx, actorID, targetID, 1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("follow counters not updated")
	}

	ref := models.Ref(models.SubjectUser, targetID)
	url, _ := SubjectURL(models.SubjectUser, followed.Username)
	s.fanOut(ctx, RecordInput{
		ActorID:      &actorID,
		Action:       ActionUserFollowed,
		Subject:      ref,
		TargetUserID: &targetID,
		Visibility:   models.VisibilityPublic,
	}, NotifyUserFollowed, &target{
		summary:    &SubjectSummary{Ref: ref, Title: followed.DisplayName(), URL: url, OwnerID: &targetID},
		visibility: models.VisibilityPublic,
	})
	return nil
}

// Unfollow removes the follow edge
func (s *EngagementService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	if err := s.follows.DeleteFollow(ctx, actorID, targetID); err != nil {
		return err
	}
	if err := s.users.AdjustFollowCounts(ctx, actorID, targetID, -1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("follow counters not updated")
	}
	return nil
}

// DeleteComment removes a comment written by actorID
func (s *EngagementService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return ErrForbidden
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	if comment.CommentableType == models.SubjectCollection {
		if err := s.collections.AdjustCounter(ctx, comment.CommentableID, repositories.CounterComments, -1); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("comments counter not updated")
		}
	}
	return nil
}
