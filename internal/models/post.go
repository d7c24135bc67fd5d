package models

import (
	"time"
)

// Post is a content record owned by a single author. Posts start unpublished
// and transition to published exactly once; AuthorID is immutable after
// creation.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Image     string    `json:"image,omitempty"`
	Published bool      `gorm:"not null;default:false" json:"published"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	LikedBy  []User    `gorm:"many2many:likes;joinForeignKey:PostID;joinReferences:UserID" json:"liked_by,omitempty"`
}
