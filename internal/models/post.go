package models

import "time"

// Post represents a post in the Murmur application.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Content  string    `gorm:"type:text" json:"content"`
	Image    string    `json:"image"`
	AuthorID uint      `gorm:"not null;index" json:"authorId"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"-"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments"`
	// LikedBy, LikesCount and CommentsCount are derived from the preloaded
	// associations by Hydrate and never persisted.
	LikedBy       []uint    `gorm:"-" json:"likes"`
	LikesCount    int       `gorm:"-" json:"likesCount"`
	CommentsCount int       `gorm:"-" json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Hydrate fills the derived fields from the preloaded Likes and Comments.
func (p *Post) Hydrate() {
	p.LikedBy = make([]uint, 0, len(p.Likes))
	for _, l := range p.Likes {
		p.LikedBy = append(p.LikedBy, l.UserID)
	}
	p.LikesCount = len(p.LikedBy)
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	p.CommentsCount = len(p.Comments)
}

// LikedByUser reports whether userID is in the post's like set.
func (p *Post) LikedByUser(userID uint) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Feed is one page of the global post feed.
type Feed struct {
	Posts      []*Post    `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
