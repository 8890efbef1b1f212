package repositories

import (
	"context"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollectionShareRepository defines the interface for share records
type CollectionShareRepository interface {
	CreateShare(ctx context.Context, share *models.CollectionShare) error
	GetShareByID(ctx context.Context, id uint) (*models.CollectionShare, error)
	GetShareByToken(ctx context.Context, token string) (*models.CollectionShare, error)
	ListByCollection(ctx context.Context, collectionID uint) ([]models.CollectionShare, error)
	UpdateAnalytics(ctx context.Context, id uint, expectedVersion int, analytics models.ShareAnalytics) error
}

type postgresCollectionShareRepository struct {
	db *gorm.DB
}

func NewPostgresCollectionShareRepository(db *gorm.DB) CollectionShareRepository {
	return &postgresCollectionShareRepository{db: db}
}

func (r *postgresCollectionShareRepository) CreateShare(ctx context.Context, share *models.CollectionShare) error {
	return translateError(r.db.WithContext(ctx).Omit("Collection", "User").Create(share).Error)
}

func (r *postgresCollectionShareRepository) GetShareByID(ctx context.Context, id uint) (*models.CollectionShare, error) {
	var share models.CollectionShare
	if err := r.db.WithContext(ctx).First(&share, id).Error; err != nil {
		return nil, readError(err)
	}
	return &share, nil
}

func (r *postgresCollectionShareRepository) GetShareByToken(ctx context.Context, token string) (*models.CollectionShare, error) {
	var share models.CollectionShare
	if err := r.db.WithContext(ctx).Preload("Collection").Where("token = ?", token).First(&share).Error; err != nil {
		return nil, readError(err)
	}
	return &share, nil
}

func (r *postgresCollectionShareRepository) ListByCollection(ctx context.Context, collectionID uint) ([]models.CollectionShare, error) {
	var shares []models.CollectionShare
	err := r.db.WithContext(ctx).Preload("User").
		Where("collection_id = ?", collectionID).
		Order("shared_at DESC").
		Find(&shares).Error
	return shares, err
}

// UpdateAnalytics replaces the analytics bag if the row is still at expectedVersion.
func (r *postgresCollectionShareRepository) UpdateAnalytics(ctx context.Context, id uint, expectedVersion int, analytics models.ShareAnalytics) error {
	res := r.db.WithContext(ctx).Model(&models.CollectionShare{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"analytics": datatypes.NewJSONType(analytics),
			"version":   expectedVersion + 1,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
