// Command seed populates the database with a superuser account and demo
// content for local development.
package main

import (
	"log"
	"os"
	"time"

	"myblog/internal/config"
	"myblog/internal/database"
	"myblog/internal/models"

	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}

func seed(db *gorm.DB) error {
	if err := seedSuperuser(db); err != nil {
		return err
	}
	if err := seedBlogs(db); err != nil {
		return err
	}
	if err := seedWelcome(db); err != nil {
		return err
	}
	return seedAboutMe(db)
}

func seedSuperuser(db *gorm.DB) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Superuser %s already exists, skipping", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:       email,
		Name:        "admin",
		Telephone:   "13800000000",
		Password:    string(hash),
		Avatar:      models.DefaultAvatar,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Created superuser %s", email)
	return nil
}

func seedBlogs(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Blog{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Blogs already exist, skipping")
		return nil
	}

	backend := models.Category{Name: "Backend", Slug: slug.Make("Backend")}
	frontend := models.Category{Name: "Frontend", Slug: slug.Make("Frontend")}
	if err := db.Create(&backend).Error; err != nil {
		return err
	}
	if err := db.Create(&frontend).Error; err != nil {
		return err
	}

	tagGo := models.Tag{Name: "Go", Slug: slug.Make("Go")}
	tagWeb := models.Tag{Name: "Web", Slug: slug.Make("Web")}
	if err := db.Create(&tagGo).Error; err != nil {
		return err
	}
	if err := db.Create(&tagWeb).Error; err != nil {
		return err
	}

	now := time.Now()
	blogs := []models.Blog{
		{
			Title:       "Hello World",
			Content:     "Welcome to the blog. This first post demonstrates published content.",
			Summary:     "The obligatory first post.",
			CategoryID:  backend.ID,
			Tags:        []models.Tag{tagGo},
			Status:      models.BlogPublished,
			PublishedAt: &now,
			Slug:        slug.Make("Hello World"),
		},
		{
			Title:      "Work in Progress",
			Content:    "Drafts stay hidden from the public listing until published.",
			Summary:    "A draft post.",
			CategoryID: frontend.ID,
			Tags:       []models.Tag{tagWeb},
			Status:     models.BlogDraft,
			Slug:       slug.Make("Work in Progress"),
		},
	}
	for i := range blogs {
		if err := db.Create(&blogs[i]).Error; err != nil {
			return err
		}
	}
	log.Printf("Created %d categories, 2 tags, %d blogs", 2, len(blogs))
	return nil
}

func seedWelcome(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Welcome{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Welcome page already exists, skipping")
		return nil
	}

	welcome := models.Welcome{
		Title:      "Welcome",
		ButtonText: "Enter",
		Descriptions: []models.Description{
			{Content: "Hi there"},
			{Content: "Read on"},
		},
	}
	return db.Create(&welcome).Error
}

func seedAboutMe(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.WorkExperience{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("About-me sections already exist, skipping")
		return nil
	}

	work := models.WorkExperience{
		Title:        "Software Engineer",
		Company:      "Example Corp",
		Period:       "2021 - now",
		Achievements: models.StringList{"Shipped the blog platform", "Cut page load times in half"},
	}
	education := models.Education{
		Major:  "Computer Science",
		School: "Example University",
		Period: "2017 - 2021",
		Degree: "BSc",
	}
	project := models.Project{
		Name:      "Blog Platform",
		TechStack: "Go, Fiber, PostgreSQL, Redis",
		Details:   models.StringList{"REST API", "Page caching"},
	}
	skills := models.SkillCategory{
		Name:   "Backend",
		Skills: models.StringList{"Go", "SQL", "Redis"},
	}

	if err := db.Create(&work).Error; err != nil {
		return err
	}
	if err := db.Create(&education).Error; err != nil {
		return err
	}
	if err := db.Create(&project).Error; err != nil {
		return err
	}
	return db.Create(&skills).Error
}
