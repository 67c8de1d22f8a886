package repository

import (
	"context"

	"myblog/internal/models"

	"gorm.io/gorm"
)

// AboutMeRepository manages the about-me aggregate. The aggregate is
// replaced wholesale: ReplaceAll swaps every section in one transaction so
// readers never observe a partially updated page.
type AboutMeRepository interface {
	GetAll(ctx context.Context) (*models.AboutMe, error)
	ReplaceAll(ctx context.Context, aboutMe *models.AboutMe) error
}

type aboutMeRepository struct {
	db *gorm.DB
}

// NewAboutMeRepository creates a new about-me repository
func NewAboutMeRepository(db *gorm.DB) AboutMeRepository {
	return &aboutMeRepository{db: db}
}

func (r *aboutMeRepository) GetAll(ctx context.Context) (*models.AboutMe, error) {
	var aboutMe models.AboutMe
	db := r.db.WithContext(ctx)

	if err := db.Order("id").Find(&aboutMe.Work).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Order("id").Find(&aboutMe.Education).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Order("id").Find(&aboutMe.Projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Order("id").Find(&aboutMe.Skills).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &aboutMe, nil
}

func (r *aboutMeRepository) ReplaceAll(ctx context.Context, aboutMe *models.AboutMe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.WorkExperience{},
			&models.Education{},
			&models.Project{},
			&models.SkillCategory{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		if len(aboutMe.Work) > 0 {
			if err := tx.Create(&aboutMe.Work).Error; err != nil {
				return err
			}
		}
		if len(aboutMe.Education) > 0 {
			if err := tx.Create(&aboutMe.Education).Error; err != nil {
				return err
			}
		}
		if len(aboutMe.Projects) > 0 {
			if err := tx.Create(&aboutMe.Projects).Error; err != nil {
				return err
			}
		}
		if len(aboutMe.Skills) > 0 {
			if err := tx.Create(&aboutMe.Skills).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
