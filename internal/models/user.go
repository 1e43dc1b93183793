// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the Circle application.
//
// Soft deletion is an explicit flag rather than gorm.DeletedAt: deleted
// users must stay loadable as authors of historical threads and replies,
// and their email addresses stay unique forever.
type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"unique;not null" json:"email"`
	Username             *string    `gorm:"unique" json:"username"`
	Password             string     `gorm:"not null" json:"-"`
	FullName             string     `gorm:"not null" json:"fullName"`
	ProfilePicture       *string    `json:"profilePicture"`
	IsDeleted            bool       `gorm:"not null;default:false" json:"isDeleted"`
	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	Profile   *Profile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Threads   []Thread   `gorm:"foreignKey:UserID" json:"threads,omitempty"`
	Replies   []Reply    `gorm:"foreignKey:UserID" json:"replies,omitempty"`
	Likes     []Like     `gorm:"foreignKey:UserID" json:"likes,omitempty"`
	Followers []Follower `gorm:"foreignKey:FollowingID" json:"followers,omitempty"`
	Following []Follower `gorm:"foreignKey:FollowerID" json:"following,omitempty"`
}

// AuthorSummary is the reduced author projection embedded in thread and
// reply payloads.
type AuthorSummary struct {
	ID             uint    `json:"id"`
	FullName       string  `json:"fullName"`
	ProfilePicture *string `json:"profilePicture"`
}

// Summary returns the reduced author projection for this user.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:             u.ID,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

// Profile holds the free-text bio owned by exactly one user. It is created
// lazily on the first profile update.
type Profile struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex" json:"userId"`
	Bio    string `gorm:"type:text" json:"bio"`
}
