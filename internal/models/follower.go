package models

import (
	"time"
)

// Follower is a directed edge: FollowerID follows FollowingID.
// Each (follower, following) pair exists at most once.
type Follower struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follower_edge" json:"followerId"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follower_edge" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`

	FollowerUser  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowingUser User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM.
func (Follower) TableName() string {
	return "followers"
}
