// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultAvatar is the avatar path assigned to newly registered users.
const DefaultAvatar = "/media/avatar/default.png"

// User represents a blog user account.
//
// Accounts are created inactive on registration and stay passwordless until
// a superuser approves them and the user completes activation; only then can
// they log in.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"size:50;unique;not null" json:"email"`
	Name        string     `gorm:"size:10;not null" json:"name"`
	Telephone   string     `gorm:"size:11;unique;not null" json:"telephone"`
	Password    string     `gorm:"not null" json:"-"`
	Avatar      string     `gorm:"size:255;default:'/media/avatar/default.png'" json:"avatar"`
	IsActive    bool       `gorm:"default:false" json:"is_active"`
	IsStaff     bool       `gorm:"default:true" json:"is_staff"`
	IsSuperuser bool       `gorm:"default:false" json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PublicUser is the reduced user representation embedded in other
// resources (comments, messages, login responses).
type PublicUser struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Telephone   string `json:"telephone"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Public returns the reduced representation of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Avatar:      u.Avatar,
		Telephone:   u.Telephone,
		IsSuperuser: u.IsSuperuser,
	}
}
