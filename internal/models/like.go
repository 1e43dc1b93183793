package models

import (
	"time"
)

// Like represents a user's endorsement of a thread.
// The combination of UserID and ThreadID must be unique; the store's
// constraint is the only guard against concurrent double-likes.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_thread" json:"userId"`
	ThreadID  uint      `gorm:"not null;uniqueIndex:idx_like_user_thread" json:"threadId"`
	CreatedAt time.Time `json:"createdAt"`

	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Thread Thread `gorm:"foreignKey:ThreadID" json:"thread,omitempty"`
}
