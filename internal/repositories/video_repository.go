package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"gorm.io/gorm"
)

// VideoRepository defines the interface for video data operations
type VideoRepository interface {
	GetVideoByID(ctx context.Context, id uint) (*models.Video, error)
	GetVideoByYouTubeID(ctx context.Context, youtubeID string) (*models.Video, error)
	FindOrCreateVideo(ctx context.Context, youtubeID string) (*models.Video, error)
	UpdateVideo(ctx context.Context, video *models.Video) error
	ListUnenhanced(ctx context.Context, limit int) ([]models.Video, error)
}

// PostgresVideoRepository implements VideoRepository for PostgreSQL
type PostgresVideoRepository struct {
	db *gorm.DB
}

// NewPostgresVideoRepository creates a new PostgresVideoRepository
func NewPostgresVideoRepository(db *gorm.DB) *PostgresVideoRepository {
	return &PostgresVideoRepository{db: db}
}

func (r *PostgresVideoRepository) GetVideoByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, readError(err)
	}
	return &video, nil
}

func (r *PostgresVideoRepository) GetVideoByYouTubeID(ctx context.Context, youtubeID string) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Where("youtube_id = ?", youtubeID).First(&video).Error; err != nil {
		return nil, readError(err)
	}
	return &video, nil
}

// FindOrCreateVideo returns the stored video for youtubeID, inserting a bare row the first time.
// A concurrent insert of the same id is resolved by reading the winner's row.
func (r *PostgresVideoRepository) FindOrCreateVideo(ctx context.Context, youtubeID string) (*models.Video, error) {
	video, err := r.GetVideoByYouTubeID(ctx, youtubeID)
	if err == nil {
		return video, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	video = &models.Video{YouTubeID: youtubeID}
	if err := translateError(r.db.WithContext(ctx).Create(video).Error); err != nil {
		if errors.Is(err, ErrConflict) {
			return r.GetVideoByYouTubeID(ctx, youtubeID)
		}
		return nil, err
	}
	return video, nil
}

func (r *PostgresVideoRepository) UpdateVideo(ctx context.Context, video *models.Video) error {
	return translateError(r.db.WithContext(ctx).Save(video).Error)
}

// ListUnenhanced returns videos that were never enriched from YouTube, oldest first
func (r *PostgresVideoRepository) ListUnenhanced(ctx context.Context, limit int) ([]models.Video, error) {
	var videos []models.Video
	err := r.db.WithContext(ctx).Where("enhanced_at IS NULL").Order("id ASC").Limit(limit).Find(&videos).Error
	return videos, err
}
