// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account in the Murmur application.
// Email is omitted from public projections (post and comment authors) by
// loading the author without it.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:254;not null" json:"email,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicUserColumns is the column set used when a user is embedded in another resource.
var PublicUserColumns = []string{"id", "username", "avatar", "bio", "created_at"}

// UserStats summarizes a profile.
type UserStats struct {
	PostsCount     int64 `json:"postsCount"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// Profile is the aggregate returned for GET /api/users/:id.
type Profile struct {
	User      *User     `json:"user"`
	Followers []User    `json:"followers"`
	Following []User    `json:"following"`
	Posts     []*Post   `json:"posts"`
	Stats     UserStats `json:"stats"`
}
