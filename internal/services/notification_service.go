package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/metrics"
	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"gorm.io/datatypes"
)

// Notification types
const (
	NotifyCollectionLiked     = "collection_liked"
	NotifyCollectionCommented = "collection_commented"
	NotifyCollectionShared    = "collection_shared"
	NotifyCommentLiked        = "comment_liked"
	NotifyUserFollowed        = "user_followed"
)

// EventNotificationCreated is published after a notification row is committed
const EventNotificationCreated = "notification.created"

var actionPhrases = map[string]string{
	NotifyCollectionLiked:     "liked your collection",
	NotifyCollectionCommented: "commented on your collection",
	NotifyCollectionShared:    "shared your collection",
	NotifyCommentLiked:        "liked your comment",
	NotifyUserFollowed:        "started following you",
}

// ActionPhrase is the sentence fragment that follows the actor's name
func ActionPhrase(notificationType string) string {
	if p, ok := actionPhrases[notificationType]; ok {
		return p
	}
	return strings.ToLower(strings.Join(models.TagWords(notificationType), " "))
}

// UnreadCounter caches per-user unread counts
type UnreadCounter interface {
	Get(ctx context.Context, userID uint) (int64, bool, error)
	Set(ctx context.Context, userID uint, count int64) error
	Invalidate(ctx context.Context, userID uint) error
}

// Pusher delivers a device push to a user
type Pusher interface {
	Push(ctx context.Context, userID uint, title, body string, data map[string]string) error
}

// EventPublisher emits a keyed event to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// NotificationEvent is the broker payload for EventNotificationCreated
type NotificationEvent struct {
	Event          string    `json:"event"`
	NotificationID uint      `json:"notification_id"`
	RecipientID    uint      `json:"recipient_id"`
	ActorID        *uint     `json:"actor_id,omitempty"`
	Type           string    `json:"type"`
	SubjectType    string    `json:"subject_type,omitempty"`
	SubjectID      uint      `json:"subject_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotifyInput addresses one notification
type NotifyInput struct {
	RecipientID  uint
	ActorID      *uint
	Type         string
	Subject      models.SubjectRef
	SubjectTitle string
	Extra        map[string]any
}

// NotificationGroups buckets a recipient's notifications by age
type NotificationGroups struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"thisWeek"`
	Older     []models.Notification `json:"older"`
}

// NotificationService dispatches notifications and owns their read state
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	counter       UnreadCounter
	pusher        Pusher
	events        EventPublisher
	now           Clock
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, now: time.Now}
}

func (s *NotificationService) WithUnreadCounter(c UnreadCounter) *NotificationService {
	s.counter = c
	return s
}

func (s *NotificationService) WithPusher(p Pusher) *NotificationService {
	s.pusher = p
	return s
}

func (s *NotificationService) WithPublisher(p EventPublisher) *NotificationService {
	s.events = p
	return s
}

func (s *NotificationService) WithClock(c Clock) *NotificationService {
	s.now = c
	return s
}

// Notify creates a notification for in.RecipientID. It returns (nil, nil) without writing
// when the recipient is the actor. Push, broker and cache updates are best effort.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if in.ActorID != nil && *in.ActorID == in.RecipientID {
		metrics.NotificationsSkipped.WithLabelValues("self").Inc()
		return nil, nil
	}
	if in.RecipientID == 0 || in.Type == "" {
		return nil, fmt.Errorf("%w: notification needs a recipient and a type", ErrInvalidInput)
	}
	if in.Subject.Type != "" && !in.Subject.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubject, in.Subject)
	}

	actorName := "Someone"
	if in.ActorID != nil {
		if actor, err := s.users.GetUserByID(ctx, *in.ActorID); err == nil {
			actorName = actor.DisplayName()
		}
	}

	n := &models.Notification{
		RecipientID:    in.RecipientID,
		NotifiableType: models.SubjectUser,
		NotifiableID:   in.RecipientID,
		Type:           in.Type,
		ActorID:        in.ActorID,
		SubjectType:    in.Subject.Type,
		SubjectID:      in.Subject.ID,
		Data: datatypes.NewJSONType(models.NotificationData{
			Version:      models.NotificationDataVersion,
			Action:       ActionPhrase(in.Type),
			ActorName:    actorName,
			SubjectTitle: in.SubjectTitle,
			SubjectType:  in.Subject.Type,
			Extra:        in.Extra,
		}),
		CreatedAt: s.now(),
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	metrics.NotificationsDispatched.WithLabelValues(in.Type).Inc()

	s.afterCreate(ctx, n)
	return n, nil
}

func (s *NotificationService) afterCreate(ctx context.Context, n *models.Notification) {
	log := logging.Ctx(ctx)
	s.invalidate(ctx, n.RecipientID)

	if s.pusher != nil {
		data := n.Data.Data()
		body := strings.TrimSpace(data.ActorName + " " + data.Action)
		if data.SubjectTitle != "" {
			body += ": " + data.SubjectTitle
		}
		err := s.pusher.Push(ctx, n.RecipientID, "VidShelf", body, map[string]string{
			"notification_id": fmt.Sprint(n.ID),
			"type":            n.Type,
		})
		if err != nil {
			metrics.SideEffectFailures.WithLabelValues("push").Inc()
			log.Warn().Err(err).Uint("notification_id", n.ID).Msg("push delivery failed")
		}
	}

	if s.events != nil {
		ev := NotificationEvent{
			Event:          EventNotificationCreated,
			NotificationID: n.ID,
			RecipientID:    n.RecipientID,
			ActorID:        n.ActorID,
			Type:           n.Type,
			SubjectType:    string(n.SubjectType),
			SubjectID:      n.SubjectID,
			CreatedAt:      n.CreatedAt,
		}
		if err := s.events.Publish(ctx, fmt.Sprint(n.RecipientID), ev); err != nil {
			metrics.SideEffectFailures.WithLabelValues("publish").Inc()
			log.Warn().Err(err).Uint("notification_id", n.ID).Msg("notification event not published")
		}
	}
}

func (s *NotificationService) invalidate(ctx context.Context, userID uint) {
	if s.counter == nil {
		return
	}
	if err := s.counter.Invalidate(ctx, userID); err != nil {
		metrics.SideEffectFailures.WithLabelValues("cache").Inc()
		logging.Ctx(ctx).Warn().Err(err).Uint("user_id", userID).Msg("unread count not invalidated")
	}
}

// MarkRead sets read_at the first time; later calls return the notification unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	changed, err := s.notifications.MarkAsRead(ctx, id, recipientID, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.NotificationsRead.Inc()
		s.invalidate(ctx, recipientID)
	}
	return s.notifications.GetForRecipient(ctx, id, recipientID)
}

// MarkUnread clears read_at
func (s *NotificationService) MarkUnread(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	changed, err := s.notifications.MarkAsUnread(ctx, id, recipientID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.invalidate(ctx, recipientID)
	}
	return s.notifications.GetForRecipient(ctx, id, recipientID)
}

// MarkAllRead marks every unread notification of the recipient and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(ctx, recipientID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.NotificationsRead.Add(float64(n))
		s.invalidate(ctx, recipientID)
	}
	return n, nil
}

func (s *NotificationService) Get(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	return s.notifications.GetForRecipient(ctx, id, recipientID)
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	return s.notifications.ListByRecipient(ctx, recipientID, unreadOnly, page, limit)
}

const groupedLimit = 200

// Grouped buckets the recipient's most recent notifications into today, yesterday,
// the rest of the last seven days, and older.
func (s *NotificationService) Grouped(ctx context.Context, recipientID uint) (*NotificationGroups, error) {
	list, err := s.notifications.ListRecent(ctx, recipientID, time.Time{}, groupedLimit)
	if err != nil {
		return nil, err
	}
	return GroupByAge(list, s.now()), nil
}

// GroupByAge partitions notifications (newest first) relative to now's calendar day
func GroupByAge(list []models.Notification, now time.Time) *NotificationGroups {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &NotificationGroups{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}
	for _, n := range list {
		created := n.CreatedAt.In(now.Location())
		switch {
		case !created.Before(todayStart):
			g.Today = append(g.Today, n)
		case !created.Before(yesterdayStart):
			g.Yesterday = append(g.Yesterday, n)
		case !created.Before(weekStart):
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g
}

// UnreadCount serves from the cache when possible and refills it on a miss
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	if s.counter != nil {
		if n, ok, err := s.counter.Get(ctx, recipientID); err == nil && ok {
			return n, nil
		} else if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("unread count cache read failed")
		}
	}
	n, err := s.notifications.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if s.counter != nil {
		if err := s.counter.Set(ctx, recipientID, n); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("unread count cache write failed")
		}
	}
	return n, nil
}
