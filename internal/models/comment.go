package models

import "time"

// Comment is appended to a post and never edited.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
