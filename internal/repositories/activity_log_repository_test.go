package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func newEntry(actorID uint, visibility models.Visibility, key *string) *models.ActivityLog {
	return &models.ActivityLog{
		ActorID:         &actorID,
		Action:          "collection.liked",
		SubjectType:     models.SubjectCollection,
		SubjectID:       1,
		Visibility:      visibility,
		AggregatedCount: 1,
		AggregationKey:  key,
		Properties:      datatypes.NewJSONType(models.ActivityProperties{Version: models.ActivityPropertiesVersion}),
	}
}

func TestActivityOpenSlotIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresActivityLogRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, repo.Insert(ctx, newEntry(alice.ID, models.VisibilityPublic, strPtr("k1"))))
	err := repo.Insert(ctx, newEntry(bob.ID, models.VisibilityPublic, strPtr("k1")))
	assert.ErrorIs(t, err, ErrConflict)

	// closed entries never collide
	require.NoError(t, repo.Insert(ctx, newEntry(bob.ID, models.VisibilityPublic, nil)))
	require.NoError(t, repo.Insert(ctx, newEntry(bob.ID, models.VisibilityPublic, nil)))
}

func TestActivityFoldIsCompareAndSwap(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresActivityLogRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	entry := newEntry(alice.ID, models.VisibilityPublic, strPtr("k1"))
	require.NoError(t, repo.Insert(ctx, entry))

	at := time.Now().Add(time.Minute)
	props := models.ActivityProperties{OtherUsers: []models.ActorIdentity{{ID: 99}}}
	require.NoError(t, repo.Fold(ctx, entry.ID, "k1", 1, props, at))

	// a second writer holding the stale count loses
	assert.ErrorIs(t, repo.Fold(ctx, entry.ID, "k1", 1, props, at), ErrConflict)

	got, err := repo.FindOpen(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.AggregatedCount)
	assert.True(t, got.Props().HasOtherUser(99))
	assert.WithinDuration(t, at, got.UpdatedAt, time.Second)
}

func TestActivityCloseReleasesKey(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresActivityLogRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	entry := newEntry(alice.ID, models.VisibilityPublic, strPtr("k1"))
	require.NoError(t, repo.Insert(ctx, entry))
	require.NoError(t, repo.Close(ctx, entry.ID, "k1"))
	assert.ErrorIs(t, repo.Close(ctx, entry.ID, "k1"), ErrConflict)

	_, err := repo.FindOpen(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Fold(ctx, entry.ID, "k1", 1, models.ActivityProperties{}, time.Now()), ErrConflict)
}

func TestActivityListVisible(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresActivityLogRepository(db)
	ctx := context.Background()

	actor := testutil.CreateUser(t, db, "actor")
	target := testutil.CreateUser(t, db, "target")
	stranger := testutil.CreateUser(t, db, "stranger")

	for _, v := range []models.Visibility{models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityFollowers} {
		e := newEntry(actor.ID, v, nil)
		e.TargetUserID = &target.ID
		require.NoError(t, repo.Insert(ctx, e))
	}

	visibleCount := func(viewer *uint) int64 {
		_, total, err := repo.ListVisible(ctx, ActivityFilter{ViewerID: viewer, Limit: 50})
		require.NoError(t, err)
		return total
	}

	assert.EqualValues(t, 1, visibleCount(nil), "anonymous sees public only")
	assert.EqualValues(t, 3, visibleCount(&actor.ID))
	assert.EqualValues(t, 3, visibleCount(&target.ID))
	assert.EqualValues(t, 1, visibleCount(&stranger.ID))

	testutil.Follow(t, db, stranger.ID, actor.ID)
	assert.EqualValues(t, 2, visibleCount(&stranger.ID), "follower gains followers-only entries")
}

func TestActivityListVisibleFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresActivityLogRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, repo.Insert(ctx, newEntry(alice.ID, models.VisibilityPublic, nil)))
	other := newEntry(bob.ID, models.VisibilityPublic, nil)
	other.SubjectID = 2
	require.NoError(t, repo.Insert(ctx, other))

	entries, total, err := repo.ListVisible(ctx, ActivityFilter{ActorID: &bob.ID, Limit: 10, Preload: []string{"Actor"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Actor)
	assert.Equal(t, "bob", entries[0].Actor.Username)

	subject := models.Ref(models.SubjectCollection, 1)
	_, total, err = repo.ListVisible(ctx, ActivityFilter{Subject: &subject, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
