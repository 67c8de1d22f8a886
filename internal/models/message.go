package models

import (
	"time"
)

// Message is a top-level guestbook entry.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Replies   []Reply   `gorm:"foreignKey:MessageID" json:"replies"`
	CreatedAt time.Time `json:"time"`
}

// Reply answers a message, or another reply of the same message via
// ParentReply. Replies are served oldest first, flat, with the parent
// reply's author exposed as reply_to.
type Reply struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MessageID     uint      `gorm:"not null;index" json:"message_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ParentReplyID *uint     `gorm:"index" json:"parent_reply_id,omitempty"`
	ParentReply   *Reply    `gorm:"foreignKey:ParentReplyID" json:"-"`
	ReplyTo       string    `gorm:"-" json:"reply_to,omitempty"`
	CreatedAt     time.Time `json:"time"`
}
