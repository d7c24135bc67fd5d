package models

import (
	"time"
)

// Like is the join row behind User.LikedPosts and Post.LikedBy. The composite
// primary key doubles as the uniqueness backstop against double-likes.
type Like struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	PostID    uint      `gorm:"primaryKey" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
