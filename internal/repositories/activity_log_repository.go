package repositories

import (
	"context"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityFilter narrows a feed query. A nil ViewerID means an anonymous viewer.
type ActivityFilter struct {
	ViewerID *uint
	ActorID  *uint
	Subject  *models.SubjectRef
	Action   string
	Page     int
	Limit    int
	Preload  []string
}

// ActivityLogRepository stores activity entries. The open-slot methods (FindOpen, Insert,
// Fold, Close) are compare-and-swap primitives: a lost race returns ErrConflict.
type ActivityLogRepository interface {
	Transaction(ctx context.Context, fn func(repo ActivityLogRepository) error) error
	FindOpen(ctx context.Context, key string) (*models.ActivityLog, error)
	Insert(ctx context.Context, entry *models.ActivityLog) error
	Fold(ctx context.Context, id uint, key string, expectedCount int, props models.ActivityProperties, at time.Time) error
	Close(ctx context.Context, id uint, key string) error
	GetByID(ctx context.Context, id uint, preload ...string) (*models.ActivityLog, error)
	ListVisible(ctx context.Context, filter ActivityFilter) ([]models.ActivityLog, int64, error)
	DeleteBySubject(ctx context.Context, subject models.SubjectRef) error
}

type postgresActivityLogRepository struct {
	db *gorm.DB
}

func NewPostgresActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &postgresActivityLogRepository{db: db}
}

// Transaction runs fn against a repository bound to a single database transaction.
func (r *postgresActivityLogRepository) Transaction(ctx context.Context, fn func(repo ActivityLogRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postgresActivityLogRepository{db: tx})
	})
}

// FindOpen returns the entry currently holding key, or ErrNotFound
func (r *postgresActivityLogRepository) FindOpen(ctx context.Context, key string) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	if err := r.db.WithContext(ctx).Where("aggregation_key = ?", key).First(&entry).Error; err != nil {
		return nil, readError(err)
	}
	return &entry, nil
}

// Insert creates entry. A unique violation on the aggregation key surfaces as ErrConflict.
func (r *postgresActivityLogRepository) Insert(ctx context.Context, entry *models.ActivityLog) error {
	return translateError(r.db.WithContext(ctx).Omit("Actor", "TargetUser").Create(entry).Error)
}

// Fold bumps the count of an open entry, but only if nobody else folded or closed it since it was read.
func (r *postgresActivityLogRepository) Fold(ctx context.Context, id uint, key string, expectedCount int, props models.ActivityProperties, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("id = ? AND aggregation_key = ? AND aggregated_count = ?", id, key, expectedCount).
		Updates(map[string]any{
			"aggregated_count": expectedCount + 1,
			"properties":       datatypes.NewJSONType(props),
			"updated_at":       at,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// Close releases key from the entry so a fresh entry can claim it
func (r *postgresActivityLogRepository) Close(ctx context.Context, id uint, key string) error {
	res := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("id = ? AND aggregation_key = ?", id, key).
		UpdateColumn("aggregation_key", nil)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *postgresActivityLogRepository) GetByID(ctx context.Context, id uint, preload ...string) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	q := r.db.WithContext(ctx)
	for _, rel := range preload {
		q = q.Preload(rel)
	}
	if err := q.First(&entry, id).Error; err != nil {
		return nil, readError(err)
	}
	return &entry, nil
}

// ListVisible returns the newest entries the viewer is allowed to see, with the total for paging.
func (r *postgresActivityLogRepository) ListVisible(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, int64, error) {
	var (
		entries []models.ActivityLog
		total   int64
	)
	q := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(visibleTo(f.ViewerID))
	if f.ActorID != nil {
		q = q.Where("actor_id = ?", *f.ActorID)
	}
	if f.Subject != nil {
		q = q.Where("subject_type = ? AND subject_id = ?", f.Subject.Type, f.Subject.ID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := q.Order("updated_at DESC").Order("id DESC")
	for _, rel := range f.Preload {
		find = find.Preload(rel)
	}
	if f.Limit > 0 {
		page := max(f.Page, 1)
		find = find.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}
	err := find.Find(&entries).Error
	return entries, total, err
}

// visibleTo restricts a query to entries the viewer may see: public ones, ones the viewer
// acted in or was targeted by, and followers-only entries of actors the viewer follows.
func visibleTo(viewerID *uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID == nil {
			return db.Where("visibility = ?", models.VisibilityPublic)
		}
		v := *viewerID
		fresh := db.Session(&gorm.Session{NewDB: true})
		following := fresh.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", v)
		return db.Where(
			fresh.Where("visibility = ?", models.VisibilityPublic).
				Or("actor_id = ?", v).
				Or("target_user_id = ?", v).
				Or("visibility = ? AND actor_id IN (?)", models.VisibilityFollowers, following),
		)
	}
}

func (r *postgresActivityLogRepository) DeleteBySubject(ctx context.Context, subject models.SubjectRef) error {
	return translateError(r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subject.Type, subject.ID).
		Delete(&models.ActivityLog{}).Error)
}
