package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/testutil"
	"gorm.io/gorm"
)

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type pushCall struct {
	userID uint
	body   string
}

type fakePusher struct {
	mu    sync.Mutex
	calls []pushCall
	err   error
}

func (p *fakePusher) Push(_ context.Context, userID uint, _, body string, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, pushCall{userID: userID, body: body})
	return p.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fakeCounter struct {
	mu          sync.Mutex
	counts      map[uint]int64
	invalidated []uint
}

func newFakeCounter() *fakeCounter { return &fakeCounter{counts: map[uint]int64{}} }

func (c *fakeCounter) Get(_ context.Context, id uint) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[id]
	return n, ok, nil
}

func (c *fakeCounter) Set(_ context.Context, id uint, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[id] = n
	return nil
}

func (c *fakeCounter) Invalidate(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

// fixture wires every service against one SQLite database
type fixture struct {
	db            *gorm.DB
	clock         *fakeClock
	pusher        *fakePusher
	publisher     *fakePublisher
	counter       *fakeCounter
	users         repositories.UserRepository
	follows       repositories.FollowRepository
	activityRepo  repositories.ActivityLogRepository
	notifyRepo    repositories.NotificationRepository
	collections   repositories.CollectionRepository
	activity      *ActivityService
	notifications *NotificationService
	engagement    *EngagementService
	shares        *ShareService
	resolver      *SubjectResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:        db,
		clock:     newFakeClock(),
		pusher:    &fakePusher{},
		publisher: &fakePublisher{},
		counter:   newFakeCounter(),
	}

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	collections := repositories.NewPostgresCollectionRepository(db)
	videos := repositories.NewPostgresVideoRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	likes := repositories.NewPostgresLikeRepository(db)
	f.users, f.follows, f.collections = users, follows, collections
	f.activityRepo = repositories.NewPostgresActivityLogRepository(db)
	f.notifyRepo = repositories.NewPostgresNotificationRepository(db)

	f.resolver = NewSubjectResolver(collections, videos, comments, users)
	f.activity = NewActivityService(f.activityRepo, users, follows, 6*time.Hour, 5).WithClock(f.clock.Now)
	f.notifications = NewNotificationService(f.notifyRepo, users).
		WithClock(f.clock.Now).
		WithPusher(f.pusher).
		WithPublisher(f.publisher).
		WithUnreadCounter(f.counter)
	f.engagement = NewEngagementService(EngagementDeps{
		Collections:   collections,
		Videos:        videos,
		Comments:      comments,
		Likes:         likes,
		Follows:       follows,
		Users:         users,
		Resolver:      f.resolver,
		Activity:      f.activity,
		Notifications: f.notifications,
	})
	f.shares = NewShareService(repositories.NewPostgresCollectionShareRepository(db), collections, f.activity, f.notifications, "https://vidshelf.test/").
		WithClock(f.clock.Now)
	return f
}

// conflictingActivityRepo loses every aggregation race
type conflictingActivityRepo struct {
	repositories.ActivityLogRepository
	attempts int
}

func (r *conflictingActivityRepo) Transaction(context.Context, func(repositories.ActivityLogRepository) error) error {
	r.attempts++
	return repositories.ErrConflict
}

// brokenActivityRepo fails every write with a store error
type brokenActivityRepo struct {
	repositories.ActivityLogRepository
}

var errDiskFull = errors.New("disk full")

func (brokenActivityRepo) Transaction(context.Context, func(repositories.ActivityLogRepository) error) error {
	return errors.Join(repositories.ErrWriteFailure, errDiskFull)
}

func uintPtr(v uint) *uint { return &v }
