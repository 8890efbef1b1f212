package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{
		"action": "collection.viewed",
		"actor_id": 3,
		"subject_type": "Collection",
		"subject_id": 9,
		"target_user_id": 4,
		"visibility": "followers",
		"notification_type": "collection_viewed",
		"subject_title": "Lo-fi"
	}`))
	require.NoError(t, err)
	assert.Equal(t, models.Ref(models.SubjectCollection, 9), evt.Subject())
	assert.Equal(t, uint(3), *evt.ActorID)

	bad := map[string]string{
		"not json":        `{`,
		"bad action":      `{"action":"Viewed","subject_type":"collection","subject_id":1}`,
		"unknown subject": `{"action":"playlist.viewed","subject_type":"playlist","subject_id":1}`,
		"missing id":      `{"action":"collection.viewed","subject_type":"collection"}`,
		"bad visibility":  `{"action":"collection.viewed","subject_type":"collection","subject_id":1,"visibility":"friends"}`,
		"orphan notify":   `{"action":"collection.viewed","subject_type":"collection","subject_id":1,"notification_type":"x"}`,
	}
	for name, raw := range bad {
		_, err := DecodeEvent([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedEvent, name)
	}
}

type recordedCall struct {
	record services.RecordInput
	notify *services.NotifyInput
}

type fakeSink struct {
	calls     recordedCall
	recordErr error
	notifyErr error
}

func (f *fakeSink) Record(_ context.Context, in services.RecordInput) (*services.RecordResult, error) {
	f.calls.record = in
	return &services.RecordResult{Outcome: services.OutcomeCreated}, f.recordErr
}

func (f *fakeSink) Notify(_ context.Context, in services.NotifyInput) (*models.Notification, error) {
	f.calls.notify = &in
	return &models.Notification{}, f.notifyErr
}

func TestHandleRecordsAndNotifies(t *testing.T) {
	sink := &fakeSink{notifyErr: errors.New("push down")}
	h := NewEventHandler(sink, sink)
	target := uint(4)
	actor := uint(3)

	err := h.Handle(context.Background(), &DomainEvent{
		Action:           "collection.viewed",
		ActorID:          &actor,
		SubjectType:      "collection",
		SubjectID:        9,
		TargetUserID:     &target,
		NotificationType: "collection_viewed",
		SubjectTitle:     "Lo-fi",
	})
	require.NoError(t, err)
	assert.Equal(t, "collection.viewed", sink.calls.record.Action)
	assert.Equal(t, "Lo-fi", sink.calls.record.Properties.SubjectTitle)
	require.NotNil(t, sink.calls.notify)
	assert.Equal(t, target, sink.calls.notify.RecipientID)
}

func TestHandleSurfacesRecordFailure(t *testing.T) {
	sink := &fakeSink{recordErr: repositories.ErrWriteFailure}
	h := NewEventHandler(sink, sink)

	err := h.Handle(context.Background(), &DomainEvent{Action: "video.watched", SubjectType: "video", SubjectID: 1})
	assert.ErrorIs(t, err, repositories.ErrWriteFailure)
	assert.True(t, retryable(err))
	assert.Nil(t, sink.calls.notify)
	assert.False(t, retryable(repositories.ErrNotFound))
}
