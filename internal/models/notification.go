package models

import "time"

// NotificationType tags what a notification is about.
type NotificationType string

const NotificationMessage NotificationType = "message"

// Notification is addressed to a single user and points back at the
// message that produced it.
type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UserID    string           `json:"userId" gorm:"column:user_id;not null;index"`
	Text      string           `json:"text" gorm:"not null"`
	Type      NotificationType `json:"type" gorm:"not null"`
	MessageID int64            `json:"messageId,string" gorm:"column:message_id;index"`
	Read      bool             `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time        `json:"createdAt"`
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
