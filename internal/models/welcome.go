package models

// Welcome is the landing page content. At most one row exists; the
// repository enforces the singleton with fetch-or-create.
type Welcome struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Title        string        `gorm:"size:10" json:"title"`
	ButtonText   string        `gorm:"size:10" json:"button_text"`
	Descriptions []Description `gorm:"foreignKey:WelcomeID" json:"descriptions"`
}

// Description is one ordered line of welcome copy.
type Description struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Content   string `gorm:"size:10" json:"content"`
	WelcomeID uint   `gorm:"not null;index" json:"-"`
}
