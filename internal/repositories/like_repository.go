package repositories

import (
	"context"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, userID uint, target models.SubjectRef) error
	HasLiked(ctx context.Context, userID uint, target models.SubjectRef) (bool, error)
	CountLikes(ctx context.Context, target models.SubjectRef) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike returns ErrConflict when the user already liked the target
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return translateError(r.db.WithContext(ctx).Create(like).Error)
}

func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, userID uint, target models.SubjectRef) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND likeable_type = ? AND likeable_id = ?", userID, target.Type, target.ID).
		Delete(&models.Like{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) HasLiked(ctx context.Context, userID uint, target models.SubjectRef) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND likeable_type = ? AND likeable_id = ?", userID, target.Type, target.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresLikeRepository) CountLikes(ctx context.Context, target models.SubjectRef) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("likeable_type = ? AND likeable_id = ?", target.Type, target.ID).
		Count(&count).Error
	return count, err
}
