package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"gorm.io/gorm"
)

// Counter columns on collections that may be adjusted in place
const (
	CounterVideos   = "videos_count"
	CounterLikes    = "likes_count"
	CounterComments = "comments_count"
	CounterShares   = "shares_count"
)

// CollectionRepository defines the interface for collection data operations
type CollectionRepository interface {
	CreateCollection(ctx context.Context, collection *models.Collection) error
	GetCollectionByID(ctx context.Context, id uint) (*models.Collection, error)
	GetCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uint, includePrivate bool, page, limit int) ([]models.Collection, int64, error)
	AddVideo(ctx context.Context, collectionID, videoID uint) (*models.CollectionVideo, error)
	AdjustCounter(ctx context.Context, id uint, column string, delta int) error
	DeleteCollection(ctx context.Context, id uint) error
}

// PostgresCollectionRepository implements CollectionRepository for PostgreSQL
type PostgresCollectionRepository struct {
	db *gorm.DB
}

// NewPostgresCollectionRepository creates a new PostgresCollectionRepository
func NewPostgresCollectionRepository(db *gorm.DB) *PostgresCollectionRepository {
	return &PostgresCollectionRepository{db: db}
}

// CreateCollection returns ErrConflict when the slug is taken
func (r *PostgresCollectionRepository) CreateCollection(ctx context.Context, collection *models.Collection) error {
	return translateError(r.db.WithContext(ctx).Create(collection).Error)
}

func (r *PostgresCollectionRepository) GetCollectionByID(ctx context.Context, id uint) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, readError(err)
	}
	return &c, nil
}

// GetCollectionBySlug loads a collection with its owner and ordered videos
func (r *PostgresCollectionRepository) GetCollectionBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	var c models.Collection
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Video").
		Where("slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, readError(err)
	}
	return &c, nil
}

func (r *PostgresCollectionRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Collection{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *PostgresCollectionRepository) ListByOwner(ctx context.Context, ownerID uint, includePrivate bool, page, limit int) ([]models.Collection, int64, error) {
	var (
		collections []models.Collection
		total       int64
	)
	q := r.db.WithContext(ctx).Model(&models.Collection{}).Where("user_id = ?", ownerID)
	if !includePrivate {
		q = q.Where("is_public = ?", true)
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&collections).Error
	return collections, total, err
}

// AddVideo appends the video at the end of the collection. ErrConflict if it is already there.
func (r *PostgresCollectionRepository) AddVideo(ctx context.Context, collectionID, videoID uint) (*models.CollectionVideo, error) {
	var item *models.CollectionVideo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos sql.NullInt64
		if err := tx.Model(&models.CollectionVideo{}).
			Where("collection_id = ?", collectionID).
			Select("MAX(position)").
			Row().Scan(&maxPos); err != nil {
			return err
		}
		next := int(maxPos.Int64) + 1
		item = &models.CollectionVideo{
			CollectionID: collectionID,
			VideoID:      videoID,
			Position:     next,
			AddedAt:      time.Now(),
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Model(&models.Collection{}).Where("id = ?", collectionID).
			UpdateColumn(CounterVideos, gorm.Expr(CounterVideos+" + 1")).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return item, nil
}

// AdjustCounter moves one of the Counter* columns by delta without touching updated_at
func (r *PostgresCollectionRepository) AdjustCounter(ctx context.Context, id uint, column string, delta int) error {
	switch column {
	case CounterVideos, CounterLikes, CounterComments, CounterShares:
	default:
		return errors.New("unknown collection counter " + column)
	}
	return translateError(r.db.WithContext(ctx).Model(&models.Collection{}).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error)
}

// DeleteCollection removes the collection together with the activity entries, notifications,
// likes and comments that reference it polymorphically. Shares and memberships cascade.
func (r *PostgresCollectionRepository) DeleteCollection(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ref := models.Ref(models.SubjectCollection, id)
		if err := tx.Where("subject_type = ? AND subject_id = ?", ref.Type, ref.ID).
			Delete(&models.ActivityLog{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("subject_type = ? AND subject_id = ?", ref.Type, ref.ID).
			Delete(&models.Notification{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("likeable_type = ? AND likeable_id = ?", ref.Type, ref.ID).
			Delete(&models.Like{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("commentable_type = ? AND commentable_id = ?", ref.Type, ref.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionShare{}).Error; err != nil {
			return translateError(err)
		}
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionVideo{}).Error; err != nil {
			return translateError(err)
		}
		res := tx.Delete(&models.Collection{}, id)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
