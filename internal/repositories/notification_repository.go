package repositories

import (
	"context"
	"time"

	"github.com/anonto42/vidshelf/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations.
// Every read and write is scoped to the recipient; another user's id behaves as missing.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetForRecipient(ctx context.Context, id, recipientID uint) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error)
	ListRecent(ctx context.Context, recipientID uint, since time.Time, limit int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID uint, at time.Time) (bool, error)
	MarkAsUnread(ctx context.Context, id, recipientID uint) (bool, error)
	MarkAllAsRead(ctx context.Context, recipientID uint, at time.Time) (int64, error)
	DeleteBySubject(ctx context.Context, subject models.SubjectRef) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return translateError(r.db.WithContext(ctx).Omit("Recipient", "Actor").Create(notification).Error)
}

func (r *postgresNotificationRepository) GetForRecipient(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error; err != nil {
		return nil, readError(err)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	var (
		notifications []models.Notification
		total         int64
	)
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	q = q.Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Actor").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

// ListRecent returns notifications created at or after since, newest first
func (r *postgresNotificationRepository) ListRecent(ctx context.Context, recipientID uint, since time.Time, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	q := r.db.WithContext(ctx).Preload("Actor").Where("recipient_id = ?", recipientID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

// MarkAsRead stamps read_at once. It reports whether the row changed; an already-read
// notification is not an error.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, id, recipientID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientID).
		Updates(map[string]any{"read_at": at, "updated_at": at})
	return r.settle(ctx, res, id, recipientID)
}

func (r *postgresNotificationRepository) MarkAsUnread(ctx context.Context, id, recipientID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NOT NULL", id, recipientID).
		UpdateColumn("read_at", nil)
	return r.settle(ctx, res, id, recipientID)
}

// settle tells a no-op update apart from a missing row
func (r *postgresNotificationRepository) settle(ctx context.Context, res *gorm.DB, id, recipientID uint) (bool, error) {
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if _, err := r.GetForRecipient(ctx, id, recipientID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Updates(map[string]any{"read_at": at, "updated_at": at})
	return res.RowsAffected, translateError(res.Error)
}

func (r *postgresNotificationRepository) DeleteBySubject(ctx context.Context, subject models.SubjectRef) error {
	return translateError(r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subject.Type, subject.ID).
		Delete(&models.Notification{}).Error)
}
