package models

import (
	"time"
)

// BlogStatus is the publication state of a blog post.
type BlogStatus string

const (
	// BlogDraft is the initial state; drafts are hidden from non-superusers.
	BlogDraft BlogStatus = "draft"
	// BlogPublished marks a post as publicly visible.
	BlogPublished BlogStatus = "published"
	// BlogArchived marks a post as retired but still readable.
	BlogArchived BlogStatus = "archived"
)

// Category groups blogs. Categories may nest one level via Parent.
type Category struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:10;unique;not null" json:"name"`
	Slug      string     `gorm:"size:50;uniqueIndex" json:"slug"`
	ParentID  *uint      `gorm:"index" json:"parent_id,omitempty"`
	Parent    *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children  []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Tag labels blogs; a blog carries any number of tags.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:10;unique;not null" json:"name"`
	Slug      string    `gorm:"size:50;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blog is a single post.
//
// ViewCount, LikeCount and CommentCount are denormalized counters updated
// with atomic single-row expressions, never recomputed from children.
// PublishedAt is set exactly once, at the first transition to published.
type Blog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:50;not null" json:"title"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Summary      string     `gorm:"type:text" json:"summary"`
	CategoryID   uint       `gorm:"not null;index" json:"category_id"`
	Category     *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags         []Tag      `gorm:"many2many:blog_tags;" json:"tags"`
	Status       BlogStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	IsTop        bool       `gorm:"default:false" json:"is_top"`
	ViewCount    uint       `gorm:"default:0" json:"view_count"`
	LikeCount    uint       `gorm:"default:0" json:"like_count"`
	CommentCount uint       `gorm:"default:0" json:"comment_count"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	Slug         string     `gorm:"size:100;uniqueIndex" json:"slug"`
	CoverImage   string     `gorm:"size:255" json:"cover_image"`
	IsOriginal   bool       `gorm:"default:true" json:"is_original"`
	OriginalURL  string     `gorm:"size:255" json:"original_url"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
