package models

import (
	"time"
)

// WorkExperience is one entry of the about-me work history.
type WorkExperience struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Company      string     `gorm:"size:100;not null" json:"company"`
	Period       string     `gorm:"size:50" json:"period"`
	Achievements StringList `gorm:"type:text" json:"achievements"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Education is one entry of the about-me education history.
type Education struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Major       string    `gorm:"size:100;not null" json:"major"`
	School      string    `gorm:"size:100;not null" json:"school"`
	Period      string    `gorm:"size:50" json:"period"`
	Degree      string    `gorm:"size:50" json:"degree"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Project is one showcased project on the about-me page.
type Project struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	TechStack string     `gorm:"size:200" json:"tech_stack"`
	Details   StringList `gorm:"type:text" json:"details"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SkillCategory is a named group of skills on the about-me page.
type SkillCategory struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:50;not null" json:"name"`
	Skills    StringList `gorm:"type:text" json:"skills"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AboutMe aggregates every about-me section into the shape served by the
// read endpoint.
type AboutMe struct {
	Work      []WorkExperience `json:"work"`
	Education []Education      `json:"education"`
	Projects  []Project        `json:"projects"`
	Skills    []SkillCategory  `json:"skills"`
}
