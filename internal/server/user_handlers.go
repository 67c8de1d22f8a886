package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"myblog/internal/models"
	"myblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const maxAvatarSize = 5 * 1024 * 1024

// GetUsers handles GET /api/users (superuser only).
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, users)
}

// UpdateUser handles PUT /api/users/:id. Users may rename themselves;
// superusers may rename anyone.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	caller := s.currentUser(c)
	if caller.ID != id && !caller.IsSuperuser {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own account"))
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	user.Name = req.Name
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusOK, user.Public())
}

// DeleteUser handles DELETE /api/users/:id. Users may delete themselves;
// superusers may delete anyone except other superusers.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	caller := s.currentUser(c)
	if caller.ID != id && !caller.IsSuperuser {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own account"))
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user.IsSuperuser {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot delete a superuser account"))
	}

	if err := s.userRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "User deleted")
}

// UploadAvatar handles POST /api/avatar/upload. Only JPEG files up to 5MB
// are accepted; the file is stored under the media root and the user's
// avatar path is updated.
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar file is required"))
	}

	if file.Size > maxAvatarSize {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar must be at most 5MB"))
	}
	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar must be a JPEG image"))
	}

	user := s.currentUser(c)

	dir := filepath.Join(s.config.MediaRoot, "avatar")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	filename := fmt.Sprintf("avatar_%d_%d.jpg", user.ID, time.Now().Unix())
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user.Avatar = "/media/avatar/" + filename
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusOK, fiber.Map{"url": user.Avatar})
}
