// Package notification provides database operations for in-app notifications.
package notification

import (
	"errors"

	"gorm.io/gorm"

	"github.com/CareerDesk/CareerDesk/internal/db/models"
)

var (
	// ErrNotificationNotFound is returned when a notification is not found
	// for the given recipient.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Create stores a new notification.
func Create(db *gorm.DB, notification *models.Notification) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(notification).Error
}

// ListByRecipient returns one identity's notifications, newest first.
func ListByRecipient(db *gorm.DB, recipientID uint64, unreadOnly bool) ([]models.Notification, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification

	result := query.Order("id DESC").Find(&notifications)
	if result.Error != nil {
		return nil, result.Error
	}

	return notifications, nil
}

// MarkRead flags one notification as read. The recipient scoping makes it
// impossible to mark someone else's notification.
func MarkRead(db *gorm.DB, recipientID, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead flags every unread notification of the recipient as read and
// returns how many were affected.
func MarkAllRead(db *gorm.DB, recipientID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
