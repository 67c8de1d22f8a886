package server

import (
	"fmt"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

const (
	defaultBlogPageSize = 6
	maxBlogPageSize     = 20
	hotBlogLimit        = 10
)

type blogRequest struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Summary     string            `json:"summary"`
	CategoryID  uint              `json:"category_id"`
	TagIDs      []uint            `json:"tag_ids"`
	Status      models.BlogStatus `json:"status"`
	IsTop       bool              `json:"is_top"`
	CoverImage  string            `json:"cover_image"`
	IsOriginal  *bool             `json:"is_original"`
	OriginalURL string            `json:"original_url"`
}

func (r *blogRequest) validate() error {
	if r.Title == "" || len(r.Title) > 50 {
		return fmt.Errorf("title is required and must be at most 50 characters")
	}
	if r.Content == "" {
		return fmt.Errorf("content is required")
	}
	if r.CategoryID == 0 {
		return fmt.Errorf("category_id is required")
	}
	switch r.Status {
	case "", models.BlogDraft, models.BlogPublished, models.BlogArchived:
	default:
		return fmt.Errorf("invalid status")
	}
	return nil
}

// GetBlogs handles GET /api/blogs with category, tag and status filters.
// Drafts never appear in the default listing; a superuser sees them only by
// filtering for status=draft explicitly.
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	page := parsePage(c, defaultBlogPageSize, maxBlogPageSize)

	filter := repository.BlogFilter{
		CategoryID: uint(c.QueryInt("category", 0)),
		TagID:      uint(c.QueryInt("tag", 0)),
		Status:     models.BlogStatus(c.Query("status")),
	}
	if filter.Status == models.BlogDraft && !s.callerIsSuperuser(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only superusers can list drafts"))
	}

	blogs, count, err := s.blogRepo.List(c.Context(), filter, page.Page, page.PageSize)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusOK, PagedResult{Count: count, Results: blogs})
}

// GetHotBlogs handles GET /api/blogs/hot (top posts by view count).
func (s *Server) GetHotBlogs(c *fiber.Ctx) error {
	blogs, err := s.blogRepo.Hot(c.Context(), hotBlogLimit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, blogs)
}

// GetLatestBlogs handles GET /api/blogs/latest (most recently published).
func (s *Server) GetLatestBlogs(c *fiber.Ctx) error {
	blogs, err := s.blogRepo.Latest(c.Context(), hotBlogLimit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, blogs)
}

// GetBlog handles GET /api/blogs/:id. Every retrieval counts one view; the
// returned row reflects the incremented counter. Drafts are invisible to
// everyone but superusers.
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.visibleBlog(c, id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.blogRepo.IncrementView(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	blog, err := s.blogRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, blog)
}

// CreateBlog handles POST /api/blogs (superuser only).
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if _, err := s.categoryRepo.GetByID(c.Context(), req.CategoryID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	status := req.Status
	if status == "" {
		status = models.BlogDraft
	}

	blog := &models.Blog{
		Title:       req.Title,
		Content:     req.Content,
		Summary:     req.Summary,
		CategoryID:  req.CategoryID,
		Status:      status,
		IsTop:       req.IsTop,
		Slug:        s.uniqueBlogSlug(c, req.Title),
		CoverImage:  req.CoverImage,
		IsOriginal:  req.IsOriginal == nil || *req.IsOriginal,
		OriginalURL: req.OriginalURL,
	}
	if status == models.BlogPublished {
		now := time.Now()
		blog.PublishedAt = &now
	}

	if err := s.blogRepo.Create(c.Context(), blog, req.TagIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	created, err := s.blogRepo.GetByID(c.Context(), blog.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusCreated, created)
}

// visibleBlog confirms the blog exists and is visible to the caller. Drafts
// look like missing rows to everyone but superusers.
func (s *Server) visibleBlog(c *fiber.Ctx, id uint) error {
	blog, err := s.blogRepo.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	if blog.Status == models.BlogDraft && !s.callerIsSuperuser(c) {
		return models.NewNotFoundError("Blog", id)
	}
	return nil
}

// uniqueBlogSlug derives a slug from the title, suffixing a counter when the
// plain form is already taken. The slug is derived once at creation and
// never changes on update.
func (s *Server) uniqueBlogSlug(c *fiber.Ctx, title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := s.db.WithContext(c.Context()).Model(&models.Blog{}).
			Where("slug = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// UpdateBlog handles PUT /api/blogs/:id (superuser only).
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req blogRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	blog, err := s.blogRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if _, err := s.categoryRepo.GetByID(c.Context(), req.CategoryID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	blog.Title = req.Title
	blog.Content = req.Content
	blog.Summary = req.Summary
	blog.CategoryID = req.CategoryID
	blog.IsTop = req.IsTop
	blog.CoverImage = req.CoverImage
	blog.OriginalURL = req.OriginalURL
	if req.IsOriginal != nil {
		blog.IsOriginal = *req.IsOriginal
	}
	if req.Status != "" {
		blog.Status = req.Status
		if req.Status == models.BlogPublished && blog.PublishedAt == nil {
			now := time.Now()
			blog.PublishedAt = &now
		}
	}
	blog.Category = nil
	blog.Tags = nil

	if err := s.blogRepo.Update(c.Context(), blog, req.TagIDs); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	updated, err := s.blogRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, updated)
}

// DeleteBlog handles DELETE /api/blogs/:id (superuser only).
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.blogRepo.GetByID(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.blogRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return models.RespondMessage(c, fiber.StatusOK, "Blog deleted")
}

// LikeBlog handles POST /api/blogs/:id/like. Likes are anonymous and not
// deduplicated; every call adds one. Draft blogs cannot be liked.
func (s *Server) LikeBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.visibleBlog(c, id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.blogRepo.IncrementLike(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	blog, err := s.blogRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"like_count": blog.LikeCount})
}

// PublishBlog handles POST /api/blogs/:id/publish (superuser only).
func (s *Server) PublishBlog(c *fiber.Ctx) error {
	return s.setBlogStatus(c, models.BlogPublished)
}

// ArchiveBlog handles POST /api/blogs/:id/archive (superuser only).
func (s *Server) ArchiveBlog(c *fiber.Ctx) error {
	return s.setBlogStatus(c, models.BlogArchived)
}

func (s *Server) setBlogStatus(c *fiber.Ctx, status models.BlogStatus) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogRepo.SetStatus(c.Context(), id, status)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, blog)
}
