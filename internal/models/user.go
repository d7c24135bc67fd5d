// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author. The password column holds a bcrypt
// digest and is never serialized to clients.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts      []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	LikedPosts []Post `gorm:"many2many:likes;joinForeignKey:UserID;joinReferences:PostID" json:"liked_posts,omitempty"`
}
