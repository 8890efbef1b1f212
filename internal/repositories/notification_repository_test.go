package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationReadState(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	other := testutil.CreateUser(t, db, "other")

	n := &models.Notification{
		RecipientID:    owner.ID,
		NotifiableType: models.SubjectUser,
		NotifiableID:   owner.ID,
		Type:           "collection_liked",
		SubjectType:    models.SubjectCollection,
		SubjectID:      7,
	}
	require.NoError(t, repo.CreateNotification(ctx, n))

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	changed, err := repo.MarkAsRead(ctx, n.ID, owner.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkAsRead(ctx, n.ID, owner.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.GetForRecipient(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	assert.True(t, got.ReadAt.Equal(first))

	_, err = repo.MarkAsRead(ctx, n.ID, other.ID, first)
	assert.ErrorIs(t, err, ErrNotFound)

	changed, err = repo.MarkAsUnread(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	count, err := repo.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	updated, err := repo.MarkAllAsRead(ctx, owner.ID, first)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)
}

func TestNotificationListUnreadOnly(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")

	readAt := time.Now()
	for i := 0; i < 3; i++ {
		n := &models.Notification{RecipientID: owner.ID, NotifiableType: models.SubjectUser, NotifiableID: owner.ID, Type: "user_followed"}
		if i == 0 {
			n.ReadAt = &readAt
		}
		require.NoError(t, repo.CreateNotification(ctx, n))
	}

	all, total, err := repo.ListByRecipient(ctx, owner.ID, false, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 2)

	_, unread, err := repo.ListByRecipient(ctx, owner.ID, true, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)
}
