package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/metrics"
	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/internal/validators"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"gorm.io/datatypes"
)

const (
	DefaultAggregationWindow = 6 * time.Hour
	DefaultMaxMergeAttempts  = 5
)

// Record outcomes, also used as metric labels
const (
	OutcomeCreated   = "created"
	OutcomeFolded    = "folded"
	OutcomeDuplicate = "duplicate"
)

// RecordInput describes one user (or system) action to log.
// AggregationKey lets system callers opt into folding; actor entries derive their own key.
type RecordInput struct {
	ActorID        *uint
	Action         string
	Subject        models.SubjectRef
	TargetUserID   *uint
	Properties     models.ActivityProperties
	Visibility     models.Visibility
	AggregationKey string
}

// RecordResult is the entry after the call and what happened to it
type RecordResult struct {
	Entry   *models.ActivityLog
	Outcome string
}

// ActivityService is the activity aggregator and the visibility-filtered read side of the log.
type ActivityService struct {
	activities  repositories.ActivityLogRepository
	users       repositories.UserRepository
	follows     FollowChecker
	window      time.Duration
	maxAttempts int
	now         Clock
}

func NewActivityService(
	activities repositories.ActivityLogRepository,
	users repositories.UserRepository,
	follows FollowChecker,
	window time.Duration,
	maxAttempts int,
) *ActivityService {
	if window <= 0 {
		window = DefaultAggregationWindow
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxMergeAttempts
	}
	return &ActivityService{
		activities:  activities,
		users:       users,
		follows:     follows,
		window:      window,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithClock replaces the time source
func (s *ActivityService) WithClock(c Clock) *ActivityService {
	s.now = c
	return s
}

// AggregationKey is the open-slot key actor entries fold under. Visibility is part of the
// key so an entry's count only ever includes actions with its own audience. Private and
// followers-only keys are also scoped to the actor: those entries are seen through their
// actor, so folding a second actor in would count someone the entry cannot show.
func AggregationKey(v models.Visibility, action string, subject models.SubjectRef, actorID uint) string {
	if v != models.VisibilityPublic {
		return fmt.Sprintf("%s|%s|%s|actor:%d", v, action, subject, actorID)
	}
	return fmt.Sprintf("%s|%s|%s", v, action, subject)
}

// Record logs an action. Within the window, actions with the same key fold into the open
// entry; an actor who already contributed is not counted twice. Lost races are retried and
// surface as repositories.ErrWriteFailure once attempts run out.
func (s *ActivityService) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	if err := s.normalize(&in); err != nil {
		return nil, err
	}

	var identity *models.ActorIdentity
	if in.ActorID != nil {
		actor, err := s.users.GetUserByID(ctx, *in.ActorID)
		if err != nil {
			return nil, fmt.Errorf("load actor %d: %w", *in.ActorID, err)
		}
		identity = &models.ActorIdentity{ID: actor.ID, Username: actor.Username, Name: actor.DisplayName()}
	}

	key := in.AggregationKey
	if key == "" && in.ActorID != nil {
		key = AggregationKey(in.Visibility, in.Action, in.Subject, *in.ActorID)
	}

	if key == "" {
		entry := s.newEntry(in, nil, s.now())
		if err := s.activities.Insert(ctx, entry); err != nil {
			return nil, err
		}
		metrics.ActivityRecords.WithLabelValues(OutcomeCreated).Inc()
		return &RecordResult{Entry: entry, Outcome: OutcomeCreated}, nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		res, err := s.tryRecord(ctx, in, key, identity)
		if err == nil {
			metrics.ActivityRecords.WithLabelValues(res.Outcome).Inc()
			return res, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return nil, err
		}
		metrics.ActivityMergeConflicts.Inc()
		logging.Ctx(ctx).Debug().Int("attempt", attempt).Str("key", key).Msg("aggregation race, retrying")
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", repositories.ErrWriteFailure, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w: aggregation for %q did not settle after %d attempts",
		repositories.ErrWriteFailure, key, s.maxAttempts)
}

func (s *ActivityService) tryRecord(ctx context.Context, in RecordInput, key string, identity *models.ActorIdentity) (*RecordResult, error) {
	var result *RecordResult
	now := s.now()

	err := s.activities.Transaction(ctx, func(repo repositories.ActivityLogRepository) error {
		open, err := repo.FindOpen(ctx, key)
		if errors.Is(err, repositories.ErrNotFound) {
			entry := s.newEntry(in, &key, now)
			if err := repo.Insert(ctx, entry); err != nil {
				return err
			}
			result = &RecordResult{Entry: entry, Outcome: OutcomeCreated}
			return nil
		}
		if err != nil {
			return err
		}

		if now.Sub(open.UpdatedAt) > s.window {
			if err := repo.Close(ctx, open.ID, key); err != nil {
				return err
			}
			entry := s.newEntry(in, &key, now)
			if err := repo.Insert(ctx, entry); err != nil {
				return err
			}
			result = &RecordResult{Entry: entry, Outcome: OutcomeCreated}
			return nil
		}

		if identity != nil && open.HasFolded(identity.ID) {
			result = &RecordResult{Entry: open, Outcome: OutcomeDuplicate}
			return nil
		}

		props := open.Props()
		if identity != nil {
			props.OtherUsers = append(props.OtherUsers, *identity)
		}
		if err := repo.Fold(ctx, open.ID, key, open.AggregatedCount, props, now); err != nil {
			return err
		}
		open.AggregatedCount++
		open.Properties = datatypes.NewJSONType(props)
		open.UpdatedAt = now
		result = &RecordResult{Entry: open, Outcome: OutcomeFolded}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ActivityService) normalize(in *RecordInput) error {
	if !validators.IsActionTag(in.Action) {
		return fmt.Errorf("%w: %q", ErrInvalidAction, in.Action)
	}
	if !in.Subject.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSubject, in.Subject)
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !in.Visibility.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVisibility, in.Visibility)
	}
	in.Properties.Version = models.ActivityPropertiesVersion
	in.Properties.OtherUsers = nil
	return nil
}

func (s *ActivityService) newEntry(in RecordInput, key *string, now time.Time) *models.ActivityLog {
	return &models.ActivityLog{
		ActorID:         in.ActorID,
		Action:          in.Action,
		SubjectType:     in.Subject.Type,
		SubjectID:       in.Subject.ID,
		TargetUserID:    in.TargetUserID,
		Properties:      datatypes.NewJSONType(in.Properties),
		Visibility:      in.Visibility,
		AggregatedCount: 1,
		AggregationKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// FeedQuery selects a page of the activity log as seen by ViewerID (nil for anonymous).
type FeedQuery struct {
	ViewerID *uint
	ActorID  *uint
	Subject  *models.SubjectRef
	Action   string
	Page     int
	Limit    int
	Preload  []string
}

// Feed returns the entries the viewer may see, newest activity first. Filtering happens in
// the query so invisible entries never reach the caller or the total.
func (s *ActivityService) Feed(ctx context.Context, q FeedQuery) ([]models.ActivityLog, int64, error) {
	if q.Subject != nil && !q.Subject.Valid() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidSubject, q.Subject)
	}
	return s.activities.ListVisible(ctx, repositories.ActivityFilter{
		ViewerID: q.ViewerID,
		ActorID:  q.ActorID,
		Subject:  q.Subject,
		Action:   q.Action,
		Page:     q.Page,
		Limit:    q.Limit,
		Preload:  q.Preload,
	})
}

// Get returns one entry, or repositories.ErrNotFound when it is missing or hidden from the viewer.
func (s *ActivityService) Get(ctx context.Context, id uint, viewerID *uint, preload ...string) (*models.ActivityLog, error) {
	entry, err := s.activities.GetByID(ctx, id, preload...)
	if err != nil {
		return nil, err
	}
	ok, err := VisibleTo(ctx, entry, viewerID, s.follows)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return entry, nil
}
