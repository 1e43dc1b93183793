// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Thread represents a top-level user post. Threads are hard-deleted.
type Thread struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	UserID   uint    `gorm:"not null;index" json:"userId"`
	Content  string  `gorm:"type:text" json:"content"`
	FileURL  *string `json:"fileUrl"`
	FileName *string `json:"fileName"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->;-:migration" json:"likeCount"`
	// ReplyCount is not persisted; computed at query time
	ReplyCount int       `gorm:"->;-:migration" json:"replyCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes   []Like  `gorm:"foreignKey:ThreadID" json:"likes,omitempty"`
	Replies []Reply `gorm:"foreignKey:ThreadID" json:"replies,omitempty"`
}

// Reply is a comment attached to a thread. Replies are hard-deleted.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	ThreadID  uint      `gorm:"not null;index" json:"threadId"`
	Content   string    `gorm:"type:text" json:"content"`
	FileURL   *string   `json:"fileUrl"`
	FileName  *string   `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
