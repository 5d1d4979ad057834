package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system. ExternalID is the opaque identity
// issued by the authentication provider and carried in access tokens.
type User struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	ExternalID string         `json:"-" gorm:"column:external_id;uniqueIndex;not null"`
	Username   string         `json:"username" gorm:"unique;not null"`
	Password   string         `json:"-" gorm:"not null"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"-"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
