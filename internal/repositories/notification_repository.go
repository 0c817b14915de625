package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/openwaterlog/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationFilter narrows a recipient's notification listing.
type NotificationFilter struct {
	Skip          int
	Limit         int
	ShowDismissed bool
	ShowAfter     *time.Time
}

// NotificationRepository defines the interface for notification operations.
// Absent and foreign-owned records are reported as gorm.ErrRecordNotFound by
// the single-record reads and silently skipped by the bulk operations, which
// return the number of rows actually touched.
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByID(recipientID uint, id string) (*models.Notification, error)
	ListByRecipient(recipientID uint, filter NotificationFilter) ([]models.Notification, int64, error)
	UpdateNotification(notification *models.Notification) error
	SetDismissed(recipientID uint, id string, dismissed bool) error
	BulkSetDismissed(recipientID uint, ids []string, dismissed bool) (int64, error)
	DeleteByIDs(recipientID uint, ids []string) (int64, error)
	PurgeExpired(now time.Time) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(recipientID uint, id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) ListByRecipient(recipientID uint, filter NotificationFilter) ([]models.Notification, int64, error) {
	scope := func() *gorm.DB {
		query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
		if !filter.ShowDismissed {
			query = query.Where("dismissed = ?", false)
		}
		if filter.ShowAfter != nil {
			query = query.Where("active >= ?", *filter.ShowAfter)
		}
		return query
	}

	// Total over the filtered set, independent of the page window.
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := scope().Order("active DESC").
		Offset(filter.Skip).Limit(filter.Limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) UpdateNotification(notification *models.Notification) error {
	return r.db.Save(notification).Error
}

func (r *postgresNotificationRepository) SetDismissed(recipientID uint, id string, dismissed bool) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("dismissed", dismissed).Error
}

// BulkSetDismissed flips the dismissed flag on every listed notification the
// recipient owns, in one statement.
func (r *postgresNotificationRepository) BulkSetDismissed(recipientID uint, ids []string, dismissed bool) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ?", recipientID, ids).
		Update("dismissed", dismissed)
	return result.RowsAffected, result.Error
}

// DeleteByIDs removes every listed notification the recipient owns, in one
// statement. Missing and foreign ids simply do not count.
func (r *postgresNotificationRepository) DeleteByIDs(recipientID uint, ids []string) (int64, error) {
	result := r.db.Where("recipient_id = ? AND id IN ?", recipientID, ids).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// PurgeExpired removes every notification past its expiry, across all users.
// Records with no expiry are never touched.
func (r *postgresNotificationRepository) PurgeExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires IS NOT NULL AND expires <= ?", now).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
