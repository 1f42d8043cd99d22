package models

import "time"

// Post represents a blog post. Every post has exactly one author; deleting a
// user does not delete their posts.
type Post struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:255;not null"`
	Content    string    `gorm:"type:text;not null"`
	DatePosted time.Time `gorm:"<-:create;autoCreateTime"`
	// Slug is a URL-friendly display field; uniqueness is not enforced.
	Slug     string `gorm:"size:255;not null"`
	PosterID uint   `gorm:"index"`
	Poster   User   `gorm:"foreignKey:PosterID"`
}
