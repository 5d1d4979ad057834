package models

import "time"

// FriendshipStatus is the state of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship links a requester and an addressee. Only accepted records
// allow messages between the two users, in either direction.
type Friendship struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	RequesterID string           `json:"requesterId" gorm:"column:requester_id;not null;index:idx_friendship_pair"`
	AddresseeID string           `json:"addresseeId" gorm:"column:addressee_id;not null;index:idx_friendship_pair;index"`
	Status      FriendshipStatus `json:"status" gorm:"not null;default:'pending';index"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// TableName specifies the table name for Friendship Model
func (Friendship) TableName() string {
	return "friendships"
}
