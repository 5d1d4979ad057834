package models

import "time"

// Message is a direct message between two friends. Messages are immutable
// once stored. IDs are snowflakes, so ordering by ID is ordering by time.
type Message struct {
	ID         int64     `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	SenderID   string    `json:"senderId" gorm:"column:sender_id;not null;index:idx_message_pair"`
	ReceiverID string    `json:"receiverId" gorm:"column:receiver_id;not null;index:idx_message_pair"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for Message Model
func (Message) TableName() string {
	return "messages"
}
