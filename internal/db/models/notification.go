package models

import "time"

// NotificationKind classifies an in-app notification.
type NotificationKind string

const (
	// NotifyWelcome is sent when an account is created.
	NotifyWelcome NotificationKind = "welcome"
	// NotifyApplication is sent to a posting owner when someone applies.
	NotifyApplication NotificationKind = "application"
	// NotifyStatusChange is sent to an applicant when their status changes.
	NotifyStatusChange NotificationKind = "status-change"
)

// Notification is an in-app message for a single recipient.
type Notification struct {
	ID          uint64           `gorm:"primaryKey" json:"id"`
	RecipientID uint64           `gorm:"index;not null" json:"recipientId"`
	Kind        NotificationKind `gorm:"type:varchar(30);not null" json:"kind"`
	Message     string           `gorm:"size:1000;not null" json:"message"`
	Read        bool             `gorm:"default:false" json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}
