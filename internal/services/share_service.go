package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/metrics"
	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DefaultShareTTL      = 7 * 24 * time.Hour
	maxAnalyticsAttempts = 5
)

// ShareInput describes one share action. UserID is nil for anonymous shares.
type ShareInput struct {
	CollectionID uint
	UserID       *uint
	Platform     models.SharePlatform
	ShareType    models.ShareType
	TTL          time.Duration
	Metadata     map[string]any
}

// ShareService creates share links for collections and tracks their use.
type ShareService struct {
	shares      repositories.CollectionShareRepository
	collections repositories.CollectionRepository
	activity    *ActivityService
	notifier    *NotificationService
	publicURL   string
	now         Clock
}

func NewShareService(
	shares repositories.CollectionShareRepository,
	collections repositories.CollectionRepository,
	activity *ActivityService,
	notifier *NotificationService,
	publicURL string,
) *ShareService {
	return &ShareService{
		shares:      shares,
		collections: collections,
		activity:    activity,
		notifier:    notifier,
		publicURL:   strings.TrimRight(publicURL, "/"),
		now:         time.Now,
	}
}

func (s *ShareService) WithClock(c Clock) *ShareService {
	s.now = c
	return s
}

// BuildShareURL renders the platform-specific share target for link
func BuildShareURL(platform models.SharePlatform, link, title string) (string, error) {
	switch platform {
	case models.PlatformTwitter:
		return "https://twitter.com/intent/tweet?" + url.Values{"url": {link}, "text": {title}}.Encode(), nil
	case models.PlatformFacebook:
		return "https://www.facebook.com/sharer/sharer.php?" + url.Values{"u": {link}}.Encode(), nil
	case models.PlatformLinkedIn:
		return "https://www.linkedin.com/sharing/share-offsite/?" + url.Values{"url": {link}}.Encode(), nil
	case models.PlatformEmail:
		return "mailto:?subject=" + url.PathEscape(title) + "&body=" + url.PathEscape(link), nil
	case models.PlatformLink:
		return link, nil
	case models.PlatformIframe:
		return fmt.Sprintf(`<iframe src="%s" width="560" height="315" frameborder="0" allowfullscreen></iframe>`,
			html.EscapeString(embedURL(link))), nil
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, platform)
}

func embedURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/embed"
	return u.String()
}

// Share creates a share record. Private and temporary shares carry a random token in
// their link; only temporary shares expire.
func (s *ShareService) Share(ctx context.Context, in ShareInput) (*models.CollectionShare, error) {
	if !in.Platform.Valid() {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, in.Platform)
	}
	if in.ShareType == "" {
		in.ShareType = models.SharePublic
	}
	if !in.ShareType.Valid() {
		return nil, fmt.Errorf("%w: unknown share type %q", ErrInvalidInput, in.ShareType)
	}

	c, err := s.collections.GetCollectionByID(ctx, in.CollectionID)
	if err != nil {
		return nil, err
	}
	if !c.IsPublic && (in.UserID == nil || *in.UserID != c.UserID) {
		return nil, repositories.ErrNotFound
	}

	now := s.now()
	link := s.publicURL + "/collections/" + url.PathEscape(c.Slug)
	share := &models.CollectionShare{
		CollectionID: c.ID,
		UserID:       in.UserID,
		Platform:     in.Platform,
		ShareType:    in.ShareType,
		SharedAt:     now,
		Metadata:     datatypes.JSONMap(in.Metadata),
		Analytics:    datatypes.NewJSONType(models.ShareAnalytics{}),
		Version:      1,
	}
	if in.ShareType != models.SharePublic {
		token := uuid.NewString()
		share.Token = &token
		link += "?" + url.Values{"share": {token}}.Encode()
	}
	if in.ShareType == models.ShareTemporary {
		ttl := in.TTL
		if ttl <= 0 {
			ttl = DefaultShareTTL
		}
		expires := now.Add(ttl)
		share.ExpiresAt = &expires
	}
	if share.ShareURL, err = BuildShareURL(in.Platform, link, c.Title); err != nil {
		return nil, err
	}

	if err := s.shares.CreateShare(ctx, share); err != nil {
		return nil, err
	}
	metrics.CollectionShares.WithLabelValues(string(in.Platform), string(in.ShareType)).Inc()
	if err := s.collections.AdjustCounter(ctx, c.ID, repositories.CounterShares, 1); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("shares counter not updated")
	}

	s.recordShare(ctx, c, share)
	return share, nil
}

func (s *ShareService) recordShare(ctx context.Context, c *models.Collection, share *models.CollectionShare) {
	log := logging.Ctx(ctx)
	owner := c.UserID
	subject := models.Ref(models.SubjectCollection, c.ID)

	_, err := s.activity.Record(ctx, RecordInput{
		ActorID:      share.UserID,
		Action:       ActionCollectionShared,
		Subject:      subject,
		TargetUserID: &owner,
		Visibility:   collectionVisibility(c),
		Properties: models.ActivityProperties{
			SubjectTitle: c.Title,
			Extra:        map[string]any{"platform": string(share.Platform), "share_type": string(share.ShareType)},
		},
	})
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("activity").Inc()
		log.Warn().Err(err).Uint("share_id", share.ID).Msg("share activity not recorded")
	}

	_, err = s.notifier.Notify(ctx, NotifyInput{
		RecipientID:  owner,
		ActorID:      share.UserID,
		Type:         NotifyCollectionShared,
		Subject:      subject,
		SubjectTitle: c.Title,
		Extra:        map[string]any{"platform": string(share.Platform)},
	})
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("notification").Inc()
		log.Warn().Err(err).Uint("share_id", share.ID).Msg("share notification not dispatched")
	}
}

// ListShares returns the shares of a collection to its owner
func (s *ShareService) ListShares(ctx context.Context, actorID, collectionID uint) ([]models.CollectionShare, error) {
	c, err := s.collections.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if c.UserID != actorID {
		return nil, ErrForbidden
	}
	return s.shares.ListByCollection(ctx, collectionID)
}

// ResolveToken returns the share behind a private or temporary link
func (s *ShareService) ResolveToken(ctx context.Context, token string) (*models.CollectionShare, error) {
	share, err := s.shares.GetShareByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if share.IsExpiredAt(s.now()) {
		return nil, ErrShareExpired
	}
	return share, nil
}

// TrackClick counts a click on the share link
func (s *ShareService) TrackClick(ctx context.Context, shareID uint) (*models.CollectionShare, error) {
	return s.track(ctx, shareID, func(a *models.ShareAnalytics, at time.Time) {
		a.Clicks++
		a.LastClick = &at
	})
}

// TrackView counts a view of the shared collection
func (s *ShareService) TrackView(ctx context.Context, shareID uint) (*models.CollectionShare, error) {
	return s.track(ctx, shareID, func(a *models.ShareAnalytics, at time.Time) {
		a.Views++
		a.LastView = &at
	})
}

// track applies mutate to the analytics bag under optimistic concurrency on the version column.
func (s *ShareService) track(ctx context.Context, shareID uint, mutate func(*models.ShareAnalytics, time.Time)) (*models.CollectionShare, error) {
	for attempt := 0; attempt < maxAnalyticsAttempts; attempt++ {
		share, err := s.shares.GetShareByID(ctx, shareID)
		if err != nil {
			return nil, err
		}
		now := s.now()
		if share.IsExpiredAt(now) {
			return nil, ErrShareExpired
		}
		analytics := share.Analytics.Data()
		mutate(&analytics, now)

		err = s.shares.UpdateAnalytics(ctx, share.ID, share.Version, analytics)
		if errors.Is(err, repositories.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		share.Analytics = datatypes.NewJSONType(analytics)
		share.Version++
		return share, nil
	}
	return nil, fmt.Errorf("%w: share %d analytics kept changing", repositories.ErrWriteFailure, shareID)
}
