package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVideoAppendsInOrder(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresCollectionRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner")
	c := testutil.CreateCollection(t, db, owner.ID, "mixes", true)
	v1 := testutil.CreateVideo(t, db, "dQw4w9WgXcQ", "one")
	v2 := testutil.CreateVideo(t, db, "9bZkp7q19f0", "two")

	first, err := repo.AddVideo(ctx, c.ID, v1.ID)
	require.NoError(t, err)
	second, err := repo.AddVideo(ctx, c.ID, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	_, err = repo.AddVideo(ctx, c.ID, v1.ID)
	assert.ErrorIs(t, err, ErrConflict)

	loaded, err := repo.GetCollectionBySlug(ctx, c.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.VideosCount)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "one", loaded.Items[0].Video.Title)
}

func TestDeleteCollectionRemovesSubjectRows(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresCollectionRepository(db)
	activity := NewPostgresActivityLogRepository(db)
	notifications := NewPostgresNotificationRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	fan := testutil.CreateUser(t, db, "fan")
	c := testutil.CreateCollection(t, db, owner.ID, "mixes", true)
	kept := testutil.CreateCollection(t, db, owner.ID, "kept", true)

	e := newEntry(fan.ID, models.VisibilityPublic, nil)
	e.SubjectID = c.ID
	require.NoError(t, activity.Insert(ctx, e))
	k := newEntry(fan.ID, models.VisibilityPublic, nil)
	k.SubjectID = kept.ID
	require.NoError(t, activity.Insert(ctx, k))
	require.NoError(t, notifications.CreateNotification(ctx, &models.Notification{
		RecipientID: owner.ID, NotifiableType: models.SubjectUser, NotifiableID: owner.ID,
		Type: "collection_liked", SubjectType: models.SubjectCollection, SubjectID: c.ID,
	}))

	require.NoError(t, repo.DeleteCollection(ctx, c.ID))
	assert.ErrorIs(t, repo.DeleteCollection(ctx, c.ID), ErrNotFound)

	_, total, err := activity.ListVisible(ctx, ActivityFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	count, err := notifications.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLikeIsUniquePerTarget(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresLikeRepository(db)
	ctx := context.Background()
	fan := testutil.CreateUser(t, db, "fan")
	target := models.Ref(models.SubjectVideo, 3)

	require.NoError(t, repo.CreateLike(ctx, &models.Like{UserID: fan.ID, LikeableType: target.Type, LikeableID: target.ID}))
	err := repo.CreateLike(ctx, &models.Like{UserID: fan.ID, LikeableType: target.Type, LikeableID: target.ID})
	assert.ErrorIs(t, err, ErrConflict)

	liked, err := repo.HasLiked(ctx, fan.ID, target)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.DeleteLike(ctx, fan.ID, target))
	assert.ErrorIs(t, repo.DeleteLike(ctx, fan.ID, target), ErrNotFound)
}

func TestFollowRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresFollowRepository(db)
	users := NewPostgresUserRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")

	require.NoError(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	assert.ErrorIs(t, repo.CreateFollow(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID}), ErrConflict)
	require.NoError(t, users.AdjustFollowCounts(ctx, a.ID, b.ID, 1))

	ok, err := repo.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := repo.GetFollowers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, a.ID, followers[0].ID)

	reloaded, err := users.GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.FollowersCount)

	require.NoError(t, repo.DeleteFollow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, repo.DeleteFollow(ctx, a.ID, b.ID), ErrNotFound)
}
