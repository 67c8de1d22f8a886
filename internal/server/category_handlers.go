package server

import (
	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

type categoryRequest struct {
	Name      string `json:"name"`
	ParentID  *uint  `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
}

func (r *categoryRequest) validate() error {
	if r.Name == "" || len([]rune(r.Name)) > 10 {
		return models.NewValidationError("Name is required and must be at most 10 characters")
	}
	return nil
}

// GetCategories handles GET /api/categories. Top-level categories come with
// their children nested.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, categories)
}

// GetCategory handles GET /api/categories/:id.
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	category, err := s.categoryRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, category)
}

// GetCategoryBlogs handles GET /api/categories/:id/blogs (published posts
// in the category).
func (s *Server) GetCategoryBlogs(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	page := parsePage(c, defaultBlogPageSize, maxBlogPageSize)
	filter := repository.BlogFilter{CategoryID: id, Status: models.BlogPublished}

	blogs, count, err := s.blogRepo.List(c.Context(), filter, page.Page, page.PageSize)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, PagedResult{Count: count, Results: blogs})
}

// CreateCategory handles POST /api/categories (superuser only).
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if req.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(c.Context(), *req.ParentID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	category := &models.Category{
		Name:      req.Name,
		Slug:      slug.Make(req.Name),
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
	}
	if err := s.categoryRepo.Create(c.Context(), category); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusCreated, category)
}

// UpdateCategory handles PUT /api/categories/:id (superuser only).
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	category, err := s.categoryRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Category cannot be its own parent"))
		}
		if _, err := s.categoryRepo.GetByID(c.Context(), *req.ParentID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	category.Name = req.Name
	category.ParentID = req.ParentID
	category.SortOrder = req.SortOrder
	category.Children = nil
	if err := s.categoryRepo.Update(c.Context(), category); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/:id (superuser only).
// Categories still referenced by blogs cannot be removed.
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.categoryRepo.GetByID(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if err := s.categoryRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Category deleted")
}
