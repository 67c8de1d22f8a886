package repository

import (
	"context"
	"errors"
	"time"

	"myblog/internal/models"

	"gorm.io/gorm"
)

// BlogFilter narrows blog listings. Zero values mean "no filter".
// Drafts never appear unless Status asks for them explicitly.
type BlogFilter struct {
	CategoryID uint
	TagID      uint
	Status     models.BlogStatus
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog, tagIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	List(ctx context.Context, filter BlogFilter, page, pageSize int) ([]models.Blog, int64, error)
	Hot(ctx context.Context, limit int) ([]models.Blog, error)
	Latest(ctx context.Context, limit int) ([]models.Blog, error)
	Update(ctx context.Context, blog *models.Blog, tagIDs []uint) error
	Delete(ctx context.Context, id uint) error
	IncrementView(ctx context.Context, id uint) error
	IncrementLike(ctx context.Context, id uint) error
	SetStatus(ctx context.Context, id uint, status models.BlogStatus) (*models.Blog, error)
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(blog).Error; err != nil {
			return err
		}
		return r.setTags(tx, blog, tagIDs)
	})
}

func (r *blogRepository) setTags(tx *gorm.DB, blog *models.Blog, tagIDs []uint) error {
	if tagIDs == nil {
		return nil
	}
	var tags []models.Tag
	if len(tagIDs) > 0 {
		if err := tx.Find(&tags, tagIDs).Error; err != nil {
			return err
		}
	}
	return tx.Model(blog).Association("Tags").Replace(tags)
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Preload("Category").Preload("Tags").First(&blog, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

func (r *blogRepository) listQuery(ctx context.Context, filter BlogFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Blog{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	} else {
		q = q.Where("status <> ?", models.BlogDraft)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.TagID != 0 {
		q = q.Joins("JOIN blog_tags ON blog_tags.blog_id = blogs.id AND blog_tags.tag_id = ?", filter.TagID)
	}
	return q
}

func (r *blogRepository) List(ctx context.Context, filter BlogFilter, page, pageSize int) ([]models.Blog, int64, error) {
	q := r.listQuery(ctx, filter)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var blogs []models.Blog
	err := q.Preload("Category").Preload("Tags").
		Order("is_top DESC, created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return blogs, count, nil
}

func (r *blogRepository) Hot(ctx context.Context, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.listQuery(ctx, BlogFilter{}).
		Preload("Category").Preload("Tags").
		Order("view_count DESC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return blogs, nil
}

func (r *blogRepository) Latest(ctx context.Context, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.listQuery(ctx, BlogFilter{}).
		Preload("Category").Preload("Tags").
		Order("published_at DESC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return blogs, nil
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(blog).Error; err != nil {
			return err
		}
		return r.setTags(tx, blog, tagIDs)
	})
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Blog{}, id).Error
	})
}

// IncrementView adds exactly 1 to the view counter as a single-row atomic
// update; concurrent reads serialize at the data store.
func (r *blogRepository) IncrementView(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementLike adds 1 to the like counter, unconditionally. Callers are
// not deduplicated.
func (r *blogRepository) IncrementLike(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).
		Update("like_count", gorm.Expr("like_count + 1")).Error
}

// SetStatus transitions the publication status. The published timestamp is
// set exactly once, at the first transition to published.
func (r *blogRepository) SetStatus(ctx context.Context, id uint, status models.BlogStatus) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&blog, id).Error; err != nil {
			return err
		}
		blog.Status = status
		if status == models.BlogPublished && blog.PublishedAt == nil {
			now := time.Now()
			blog.PublishedAt = &now
		}
		return tx.Save(&blog).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}
