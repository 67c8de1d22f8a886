package repository

import (
	"context"
	"errors"

	"myblog/internal/models"

	"gorm.io/gorm"
)

// WelcomeRepository manages the singleton welcome page. There is at most
// one Welcome row; Replace creates it on first write.
type WelcomeRepository interface {
	Get(ctx context.Context) (*models.Welcome, error)
	Replace(ctx context.Context, welcome *models.Welcome) (*models.Welcome, error)
}

type welcomeRepository struct {
	db *gorm.DB
}

// NewWelcomeRepository creates a new welcome repository
func NewWelcomeRepository(db *gorm.DB) WelcomeRepository {
	return &welcomeRepository{db: db}
}

func (r *welcomeRepository) Get(ctx context.Context) (*models.Welcome, error) {
	var welcome models.Welcome
	err := r.db.WithContext(ctx).
		Preload("Descriptions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&welcome).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Welcome", 0)
		}
		return nil, models.NewInternalError(err)
	}
	return &welcome, nil
}

// Replace updates the singleton row and swaps its description lines in one
// transaction. A missing row is created rather than reported as an error.
func (r *welcomeRepository) Replace(ctx context.Context, welcome *models.Welcome) (*models.Welcome, error) {
	var stored models.Welcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&stored).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			stored = models.Welcome{}
			if err := tx.Create(&stored).Error; err != nil {
				return err
			}
		}

		stored.Title = welcome.Title
		stored.ButtonText = welcome.ButtonText
		if err := tx.Save(&stored).Error; err != nil {
			return err
		}

		if err := tx.Where("welcome_id = ?", stored.ID).Delete(&models.Description{}).Error; err != nil {
			return err
		}
		for i := range welcome.Descriptions {
			welcome.Descriptions[i].ID = 0
			welcome.Descriptions[i].WelcomeID = stored.ID
		}
		if len(welcome.Descriptions) > 0 {
			if err := tx.Create(&welcome.Descriptions).Error; err != nil {
				return err
			}
		}
		stored.Descriptions = welcome.Descriptions
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &stored, nil
}
