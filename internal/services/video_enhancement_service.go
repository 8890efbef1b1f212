package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"github.com/anonto42/vidshelf/backend/internal/repositories"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"google.golang.org/api/youtube/v3"
)

// VideoSource fetches video data from YouTube
type VideoSource interface {
	FetchVideo(ctx context.Context, youtubeID string) (*youtube.Video, error)
	CategoryName(ctx context.Context, categoryID string) (string, error)
}

// EnhanceOutcome reports one video processed by EnhancePending
type EnhanceOutcome struct {
	Video *models.Video
	Err   error
}

// VideoEnhancementService enriches stored videos with YouTube metadata
type VideoEnhancementService struct {
	videos   repositories.VideoRepository
	metadata repositories.VideoMetadataRepository
	source   VideoSource
	now      Clock
}

// NewVideoEnhancementService wires the service. metadata may be nil when MongoDB is not configured.
func NewVideoEnhancementService(videos repositories.VideoRepository, metadata repositories.VideoMetadataRepository, source VideoSource) *VideoEnhancementService {
	return &VideoEnhancementService{videos: videos, metadata: metadata, source: source, now: time.Now}
}

func (s *VideoEnhancementService) WithClock(c Clock) *VideoEnhancementService {
	s.now = c
	return s
}

// Enhance refreshes one video from YouTube and stores the raw payload alongside it
func (s *VideoEnhancementService) Enhance(ctx context.Context, videoID uint) (*models.Video, error) {
	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return s.enhance(ctx, video)
}

// EnhanceByYouTubeID is Enhance keyed by the YouTube id
func (s *VideoEnhancementService) EnhanceByYouTubeID(ctx context.Context, youtubeID string) (*models.Video, error) {
	video, err := s.videos.GetVideoByYouTubeID(ctx, youtubeID)
	if err != nil {
		return nil, err
	}
	return s.enhance(ctx, video)
}

// EnhancePending processes up to limit videos that were never enhanced. A failure on one
// video is reported in its outcome and does not stop the batch.
func (s *VideoEnhancementService) EnhancePending(ctx context.Context, limit int) ([]EnhanceOutcome, error) {
	videos, err := s.videos.ListUnenhanced(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]EnhanceOutcome, 0, len(videos))
	for i := range videos {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		v, err := s.enhance(ctx, &videos[i])
		if v == nil {
			v = &videos[i]
		}
		out = append(out, EnhanceOutcome{Video: v, Err: err})
	}
	return out, nil
}

func (s *VideoEnhancementService) enhance(ctx context.Context, video *models.Video) (*models.Video, error) {
	yt, err := s.source.FetchVideo(ctx, video.YouTubeID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", video.YouTubeID, err)
	}

	if sn := yt.Snippet; sn != nil {
		video.Title = sn.Title
		video.Description = sn.Description
		video.ChannelID = sn.ChannelId
		video.ChannelTitle = sn.ChannelTitle
		video.CategoryID = sn.CategoryId
		video.ThumbnailURL = BestThumbnail(sn.Thumbnails)
		if t, err := time.Parse(time.RFC3339, sn.PublishedAt); err == nil {
			video.PublishedAt = &t
		}
		if sn.CategoryId != "" {
			name, err := s.source.CategoryName(ctx, sn.CategoryId)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("category_id", sn.CategoryId).Msg("category name unavailable")
			} else {
				video.CategoryName = name
			}
		}
	}
	if cd := yt.ContentDetails; cd != nil && cd.Duration != "" {
		secs, err := ParseISODuration(cd.Duration)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("youtube_id", video.YouTubeID).Msg("unparseable duration")
		} else {
			video.DurationSeconds = secs
			video.DurationFormatted = FormatDuration(secs)
		}
	}
	if st := yt.Statistics; st != nil {
		video.ViewCount = int64(st.ViewCount)
		video.LikeCount = int64(st.LikeCount)
	}
	now := s.now()
	video.EnhancedAt = &now

	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		return nil, err
	}
	s.storePayload(ctx, video, yt, now)
	return video, nil
}

func (s *VideoEnhancementService) storePayload(ctx context.Context, video *models.Video, yt *youtube.Video, at time.Time) {
	if s.metadata == nil {
		return
	}
	raw, err := json.Marshal(yt)
	if err != nil {
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	err = s.metadata.Upsert(ctx, &models.VideoMetadata{
		VideoID:   video.ID,
		YouTubeID: video.YouTubeID,
		Payload:   payload,
		FetchedAt: at,
	})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("youtube_id", video.YouTubeID).Msg("raw payload not stored")
	}
}

// BestThumbnail picks the largest available thumbnail URL
func BestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts YouTube's ISO-8601 durations such as PT1H2M3S to seconds
func ParseISODuration(s string) (int, error) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
	}
	units := []int{24 * 3600, 3600, 60, 1}
	total := 0
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("%w: duration %q", ErrInvalidInput, s)
		}
		total += n * unit
	}
	return total, nil
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour
func FormatDuration(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, sec := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
