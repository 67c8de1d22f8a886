package models

import (
	"time"
)

// Comment is a reader comment on a blog. A comment may reply to another
// comment of the same blog via ParentComment (one level of reply-to).
type Comment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BlogID          uint       `gorm:"not null;index" json:"blog_id"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	ParentCommentID *uint      `gorm:"index" json:"parent_comment_id,omitempty"`
	ParentComment   *Comment   `gorm:"foreignKey:ParentCommentID" json:"-"`
	CreatedAt       time.Time  `json:"time"`
}
