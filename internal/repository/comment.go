package repository

import (
	"context"
	"errors"

	"myblog/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Create and Delete maintain the blog's denormalized comment counter inside
// the same transaction as the row change.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByBlog(ctx context.Context, blogID uint) ([]models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Blog{}).Where("id = ?", comment.BlogID).
			Update("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByBlog(ctx context.Context, blogID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("User").Preload("ParentComment.User").
		Where("blog_id = ?", blogID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}

		// Child comments point at this one; removing the parent removes
		// the whole thread level.
		var childIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_comment_id = ?", id).
			Pluck("id", &childIDs).Error; err != nil {
			return err
		}
		removed := int64(1 + len(childIDs))

		if len(childIDs) > 0 {
			if err := tx.Delete(&models.Comment{}, childIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return err
		}

		// Guarded decrement keeps the counter from going negative even if
		// it has drifted.
		return tx.Model(&models.Blog{}).
			Where("id = ? AND comment_count >= ?", comment.BlogID, removed).
			Update("comment_count", gorm.Expr("comment_count - ?", removed)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
