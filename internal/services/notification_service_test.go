package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySkipsSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "self")

	types := []string{NotifyCollectionLiked, NotifyCollectionCommented, NotifyCollectionShared, NotifyCommentLiked, NotifyUserFollowed, "custom_type"}
	subjects := []models.SubjectRef{
		models.Ref(models.SubjectCollection, 1),
		models.Ref(models.SubjectVideo, 2),
		models.Ref(models.SubjectComment, 3),
		models.Ref(models.SubjectUser, u.ID),
	}
	for _, typ := range types {
		for _, subj := range subjects {
			n, err := f.notifications.Notify(ctx, NotifyInput{RecipientID: u.ID, ActorID: &u.ID, Type: typ, Subject: subj})
			require.NoError(t, err)
			assert.Nil(t, n)
		}
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.pusher.calls)
	assert.Empty(t, f.publisher.events)
}

func TestNotifyEmbedsDisplayContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := &models.User{Username: "fan", Name: "Fan Person", Email: "fan@example.com"}
	require.NoError(t, f.db.Create(fan).Error)

	n, err := f.notifications.Notify(ctx, NotifyInput{
		RecipientID:  owner.ID,
		ActorID:      &fan.ID,
		Type:         NotifyCollectionLiked,
		Subject:      models.Ref(models.SubjectCollection, 4),
		SubjectTitle: "Lo-fi beats",
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Nil(t, n.ReadAt)
	assert.Equal(t, models.SubjectUser, n.NotifiableType)
	assert.Equal(t, owner.ID, n.NotifiableID)

	stored, err := f.notifyRepo.GetForRecipient(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	data := stored.Data.Data()
	assert.Equal(t, "Fan Person", data.ActorName)
	assert.Equal(t, "Lo-fi beats", data.SubjectTitle)
	assert.Equal(t, models.SubjectCollection, data.SubjectType)
	assert.Equal(t, "liked your collection", data.Action)

	require.Len(t, f.pusher.calls, 1)
	assert.Equal(t, owner.ID, f.pusher.calls[0].userID)
	assert.Contains(t, f.pusher.calls[0].body, "Fan Person liked your collection")
	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0].(NotificationEvent)
	assert.Equal(t, EventNotificationCreated, ev.Event)
	assert.Equal(t, n.ID, ev.NotificationID)
	assert.Contains(t, f.counter.invalidated, owner.ID)
}

func TestNotifySurvivesSideEffectFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")
	f.pusher.err = errors.New("fcm down")
	f.publisher.err = errors.New("broker down")

	n, err := f.notifications.Notify(ctx, NotifyInput{RecipientID: owner.ID, ActorID: &fan.ID, Type: NotifyUserFollowed})
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestNotifyRequiresRecipientAndType(t *testing.T) {
	f := newFixture(t)
	_, err := f.notifications.Notify(context.Background(), NotifyInput{Type: NotifyUserFollowed})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.notifications.Notify(context.Background(), NotifyInput{RecipientID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")

	n, err := f.notifications.Notify(ctx, NotifyInput{RecipientID: owner.ID, ActorID: &fan.ID, Type: NotifyUserFollowed})
	require.NoError(t, err)

	first, err := f.notifications.MarkRead(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	f.clock.Advance(time.Hour)
	second, err := f.notifications.MarkRead(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, second.ReadAt)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt))

	_, err = f.notifications.MarkRead(ctx, n.ID, fan.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	unread, err := f.notifications.MarkUnread(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, unread.ReadAt)
}

func TestUnreadCountUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")

	for i := 0; i < 3; i++ {
		_, err := f.notifications.Notify(ctx, NotifyInput{RecipientID: owner.ID, ActorID: &fan.ID, Type: NotifyUserFollowed})
		require.NoError(t, err)
	}

	n, err := f.notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	cached, ok, _ := f.counter.Get(ctx, owner.ID)
	assert.True(t, ok)
	assert.EqualValues(t, 3, cached)

	changed, err := f.notifications.MarkAllRead(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, changed)

	n, err = f.notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGroupByAge(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) models.Notification {
		return models.Notification{CreatedAt: now.Add(-d)}
	}
	list := []models.Notification{
		at(time.Hour),       // today
		at(9 * time.Hour),   // midnight today
		at(10 * time.Hour),  // yesterday
		at(40 * time.Hour),  // two days ago
		at(200 * time.Hour), // over a week
	}

	g := GroupByAge(list, now)
	assert.Len(t, g.Today, 2)
	assert.Len(t, g.Yesterday, 1)
	assert.Len(t, g.ThisWeek, 1)
	assert.Len(t, g.Older, 1)
}

func TestActionPhraseFallback(t *testing.T) {
	assert.Equal(t, "started following you", ActionPhrase(NotifyUserFollowed))
	assert.Equal(t, "video enhanced", ActionPhrase("video_enhanced"))
	assert.Equal(t, "playlist synced", ActionPhrase("Playlist:Synced"))
	assert.Equal(t, "foo bar baz", ActionPhrase("foo..bar_-baz"))
}
