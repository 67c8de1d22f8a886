// Package service holds cross-entity business rules that do not belong in
// a single repository.
package service

import (
	"context"
	"unicode/utf8"

	"myblog/internal/models"
	"myblog/internal/repository"
)

const minCommentLen = 10

type CommentService struct {
	commentRepo repository.CommentRepository
	blogRepo    repository.BlogRepository
	isSuperuser func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID          uint
	BlogID          uint
	Content         string
	ParentCommentID *uint
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	blogRepo repository.BlogRepository,
	isSuperuser func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		blogRepo:    blogRepo,
		isSuperuser: isSuperuser,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.blogRepo.GetByID(ctx, in.BlogID); err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(in.Content) < minCommentLen {
		return nil, models.NewValidationError("Comment must be at least 10 characters")
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.BlogID != in.BlogID {
			return nil, models.NewValidationError("Parent comment belongs to a different blog")
		}
	}

	comment := &models.Comment{
		Content:         in.Content,
		UserID:          in.UserID,
		BlogID:          in.BlogID,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, blogID uint) ([]models.Comment, error) {
	if _, err := s.blogRepo.GetByID(ctx, blogID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByBlog(ctx, blogID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}

	if comment.UserID != in.UserID {
		if s.isSuperuser == nil {
			return models.NewForbiddenError("You can only delete your own comments")
		}
		superuser, err := s.isSuperuser(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !superuser {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}

	return s.commentRepo.Delete(ctx, in.CommentID)
}
