package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/anonto42/vidshelf/backend/internal/validators"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
)

var ErrMalformedEvent = errors.New("malformed domain event")

// DomainEvent is an action reported by another service, e.g. the web client's
// "collection viewed" beacon, to be logged and optionally notified.
type DomainEvent struct {
	Action           string         `json:"action"`
	ActorID          *uint          `json:"actor_id"`
	SubjectType      string         `json:"subject_type"`
	SubjectID        uint           `json:"subject_id"`
	TargetUserID     *uint          `json:"target_user_id"`
	Visibility       string         `json:"visibility"`
	NotificationType string         `json:"notification_type"`
	SubjectTitle     string         `json:"subject_title"`
	Properties       map[string]any `json:"properties"`
}

func (e DomainEvent) Subject() models.SubjectRef {
	t, _ := models.ParseSubjectType(e.SubjectType)
	return models.Ref(t, e.SubjectID)
}

// DecodeEvent parses and checks a message value
func DecodeEvent(raw []byte) (*DomainEvent, error) {
	var evt DomainEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if !validators.IsActionTag(evt.Action) {
		return nil, fmt.Errorf("%w: action %q", ErrMalformedEvent, evt.Action)
	}
	if _, ok := models.ParseSubjectType(evt.SubjectType); !ok || evt.SubjectID == 0 {
		return nil, fmt.Errorf("%w: subject %s:%d", ErrMalformedEvent, evt.SubjectType, evt.SubjectID)
	}
	if evt.Visibility != "" && !models.Visibility(evt.Visibility).Valid() {
		return nil, fmt.Errorf("%w: visibility %q", ErrMalformedEvent, evt.Visibility)
	}
	if evt.NotificationType != "" && evt.TargetUserID == nil {
		return nil, fmt.Errorf("%w: notification without target user", ErrMalformedEvent)
	}
	return &evt, nil
}

// ActivityRecorder is the aggregator entry point
type ActivityRecorder interface {
	Record(ctx context.Context, in services.RecordInput) (*services.RecordResult, error)
}

// Notifier is the dispatcher entry point
type Notifier interface {
	Notify(ctx context.Context, in services.NotifyInput) (*models.Notification, error)
}

// EventHandler records a domain event and notifies its target user
type EventHandler struct {
	activity ActivityRecorder
	notifier Notifier
}

func NewEventHandler(activity ActivityRecorder, notifier Notifier) *EventHandler {
	return &EventHandler{activity: activity, notifier: notifier}
}

// Handle returns an error only when the activity write failed. Notification failures are logged.
func (h *EventHandler) Handle(ctx context.Context, evt *DomainEvent) error {
	subject := evt.Subject()
	_, err := h.activity.Record(ctx, services.RecordInput{
		ActorID:      evt.ActorID,
		Action:       evt.Action,
		Subject:      subject,
		TargetUserID: evt.TargetUserID,
		Visibility:   models.Visibility(evt.Visibility),
		Properties: models.ActivityProperties{
			SubjectTitle: evt.SubjectTitle,
			Extra:        evt.Properties,
		},
	})
	if err != nil {
		return err
	}

	if evt.NotificationType == "" || evt.TargetUserID == nil {
		return nil
	}
	_, err = h.notifier.Notify(ctx, services.NotifyInput{
		RecipientID:  *evt.TargetUserID,
		ActorID:      evt.ActorID,
		Type:         evt.NotificationType,
		Subject:      subject,
		SubjectTitle: evt.SubjectTitle,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("type", evt.NotificationType).Msg("event notification not dispatched")
	}
	return nil
}
