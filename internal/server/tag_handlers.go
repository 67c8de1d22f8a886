package server

import (
	"myblog/internal/models"
	"myblog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

func validateTagName(name string) error {
	if name == "" || len([]rune(name)) > 10 {
		return models.NewValidationError("Name is required and must be at most 10 characters")
	}
	return nil
}

// GetTags handles GET /api/tags.
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, tags)
}

// GetTagBlogs handles GET /api/tags/:id/blogs (published posts carrying the
// tag).
func (s *Server) GetTagBlogs(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.tagRepo.GetByID(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	page := parsePage(c, defaultBlogPageSize, maxBlogPageSize)
	filter := repository.BlogFilter{TagID: id, Status: models.BlogPublished}

	blogs, count, err := s.blogRepo.List(c.Context(), filter, page.Page, page.PageSize)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, PagedResult{Count: count, Results: blogs})
}

// CreateTag handles POST /api/tags (superuser only).
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validateTagName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	tag := &models.Tag{Name: req.Name, Slug: slug.Make(req.Name)}
	if err := s.tagRepo.Create(c.Context(), tag); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusCreated, tag)
}

// UpdateTag handles PUT /api/tags/:id (superuser only).
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validateTagName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	tag, err := s.tagRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	tag.Name = req.Name
	if err := s.tagRepo.Update(c.Context(), tag); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/:id (superuser only).
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.tagRepo.GetByID(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if err := s.tagRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Tag deleted")
}
