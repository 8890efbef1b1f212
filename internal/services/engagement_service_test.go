package services

import (
	"context"
	"testing"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationsFor(t *testing.T, f *fixture, userID uint) []models.Notification {
	t.Helper()
	list, _, err := f.notifyRepo.ListByRecipient(context.Background(), userID, false, 1, 50)
	require.NoError(t, err)
	return list
}

func TestLikeCollectionRecordsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")
	c := testutil.CreateCollection(t, f.db, owner.ID, "synthwave", true)
	ref := models.Ref(models.SubjectCollection, c.ID)

	_, err := f.engagement.Like(ctx, fan.ID, ref)
	require.NoError(t, err)

	entries, _, err := f.activity.Feed(ctx, FeedQuery{Subject: &ref, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "collection.liked", entries[0].Action)
	assert.Equal(t, owner.ID, *entries[0].TargetUserID)
	assert.Equal(t, "synthwave", entries[0].Props().SubjectTitle)

	notes := notificationsFor(t, f, owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, NotifyCollectionLiked, notes[0].Type)

	reloaded, err := f.collections.GetCollectionByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.LikesCount)

	_, err = f.engagement.Like(ctx, fan.ID, ref)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, f.engagement.Unlike(ctx, fan.ID, ref))
	assert.ErrorIs(t, f.engagement.Unlike(ctx, fan.ID, ref), repositories.ErrNotFound)
}

func TestLikeOwnCollectionDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	c := testutil.CreateCollection(t, f.db, owner.ID, "mine", true)

	_, err := f.engagement.Like(ctx, owner.ID, models.Ref(models.SubjectCollection, c.ID))
	require.NoError(t, err)
	assert.Empty(t, notificationsFor(t, f, owner.ID))
}

func TestPrivateCollectionIsHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	stranger := testutil.CreateUser(t, f.db, "stranger")
	c := testutil.CreateCollection(t, f.db, owner.ID, "secret", false)
	ref := models.Ref(models.SubjectCollection, c.ID)

	_, err := f.engagement.Like(ctx, stranger.ID, ref)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = f.engagement.Comment(ctx, owner.ID, ref, "note to self")
	require.NoError(t, err)
	entries, _, err := f.activity.Feed(ctx, FeedQuery{ViewerID: &stranger.ID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommentsOnPrivateCollectionStayPrivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	stranger := testutil.CreateUser(t, f.db, "stranger")
	c := testutil.CreateCollection(t, f.db, owner.ID, "diary", false)

	comment, err := f.engagement.Comment(ctx, owner.ID, models.Ref(models.SubjectCollection, c.ID), "my private diary entry")
	require.NoError(t, err)
	ref := models.Ref(models.SubjectComment, comment.ID)

	_, err = f.engagement.Like(ctx, stranger.ID, ref)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = f.engagement.Like(ctx, owner.ID, ref)
	require.NoError(t, err)

	entries, _, err := f.activity.Feed(ctx, FeedQuery{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, _, err = f.activity.Feed(ctx, FeedQuery{ViewerID: &owner.ID, Action: "comment.liked", Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.VisibilityPrivate, entries[0].Visibility)
}

func TestLikeCommentOnPublicCollectionIsPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")
	c := testutil.CreateCollection(t, f.db, owner.ID, "open", true)

	comment, err := f.engagement.Comment(ctx, owner.ID, models.Ref(models.SubjectCollection, c.ID), "first!")
	require.NoError(t, err)
	_, err = f.engagement.Like(ctx, fan.ID, models.Ref(models.SubjectComment, comment.ID))
	require.NoError(t, err)

	entries, _, err := f.activity.Feed(ctx, FeedQuery{Action: "comment.liked", Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.VisibilityPublic, entries[0].Visibility)
}

func TestLikeRejectsUsersAndMissingSubjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fan := testutil.CreateUser(t, f.db, "fan")

	_, err := f.engagement.Like(ctx, fan.ID, models.Ref(models.SubjectUser, fan.ID))
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = f.engagement.Like(ctx, fan.ID, models.Ref(models.SubjectVideo, 404))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCommentOnCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")
	c := testutil.CreateCollection(t, f.db, owner.ID, "jazz", true)

	comment, err := f.engagement.Comment(ctx, fan.ID, models.Ref(models.SubjectCollection, c.ID), "great picks")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)

	notes := notificationsFor(t, f, owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, NotifyCollectionCommented, notes[0].Type)

	_, err = f.engagement.Comment(ctx, fan.ID, models.Ref(models.SubjectUser, owner.ID), "hi")
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, f.db, "a")
	b := testutil.CreateUser(t, f.db, "b")

	assert.ErrorIs(t, f.engagement.Follow(ctx, a.ID, a.ID), ErrSelfAction)
	require.NoError(t, f.engagement.Follow(ctx, a.ID, b.ID))
	assert.ErrorIs(t, f.engagement.Follow(ctx, a.ID, b.ID), ErrAlreadyExists)
	assert.ErrorIs(t, f.engagement.Follow(ctx, a.ID, 999), repositories.ErrNotFound)

	notes := notificationsFor(t, f, b.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, NotifyUserFollowed, notes[0].Type)

	target, err := f.users.GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, target.FollowersCount)

	require.NoError(t, f.engagement.Unfollow(ctx, a.ID, b.ID))
	target, err = f.users.GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, target.FollowersCount)
}

func TestCreateCollectionAndAddVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	other := testutil.CreateUser(t, f.db, "other")

	private := false
	c1, err := f.engagement.CreateCollection(ctx, owner.ID, models.CreateCollectionRequest{Title: "Late Night Drives", IsPublic: &private})
	require.NoError(t, err)
	assert.Equal(t, "late-night-drives", c1.Slug)
	assert.False(t, c1.IsPublic)

	c2, err := f.engagement.CreateCollection(ctx, owner.ID, models.CreateCollectionRequest{Title: "Late night drives!"})
	require.NoError(t, err)
	assert.NotEqual(t, c1.Slug, c2.Slug)
	assert.Contains(t, c2.Slug, "late-night-drives-")

	item, err := f.engagement.AddVideo(ctx, owner.ID, c1.ID, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Position)

	_, err = f.engagement.AddVideo(ctx, owner.ID, c1.ID, "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	_, err = f.engagement.AddVideo(ctx, other.ID, c1.ID, "9bZkp7q19f0")
	assert.ErrorIs(t, err, ErrForbidden)

	entries, _, err := f.activity.Feed(ctx, FeedQuery{ViewerID: &owner.ID, ActorID: &owner.ID, Limit: 10})
	require.NoError(t, err)
	actions := map[string]models.Visibility{}
	for _, e := range entries {
		if e.SubjectID == c1.ID {
			actions[e.Action] = e.Visibility
		}
	}
	assert.Equal(t, models.VisibilityPrivate, actions[ActionCollectionCreated])
	assert.Equal(t, models.VisibilityPrivate, actions[ActionCollectionVideoAdded])

	assert.ErrorIs(t, f.engagement.DeleteCollection(ctx, other.ID, c1.ID), ErrForbidden)
	require.NoError(t, f.engagement.DeleteCollection(ctx, owner.ID, c1.ID))
	entries, _, err = f.activity.Feed(ctx, FeedQuery{ViewerID: &owner.ID, ActorID: &owner.ID, Subject: &models.SubjectRef{Type: models.SubjectCollection, ID: c1.ID}, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "owner")
	fan := testutil.CreateUser(t, f.db, "fan")
	c := testutil.CreateCollection(t, f.db, owner.ID, "jazz", true)

	comment, err := f.engagement.Comment(ctx, fan.ID, models.Ref(models.SubjectCollection, c.ID), "nice")
	require.NoError(t, err)

	assert.ErrorIs(t, f.engagement.DeleteComment(ctx, owner.ID, comment.ID), ErrForbidden)
	require.NoError(t, f.engagement.DeleteComment(ctx, fan.ID, comment.ID))
	assert.ErrorIs(t, f.engagement.DeleteComment(ctx, fan.ID, comment.ID), repositories.ErrNotFound)

	reloaded, err := f.collections.GetCollectionByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.CommentsCount)
}
