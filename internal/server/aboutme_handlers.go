package server

import (
	"log/slog"

	"myblog/internal/cache"
	"myblog/internal/middleware"
	"myblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	maxWorkEntries      = 2
	maxAchievements     = 3
	maxEducationEntries = 2
)

// GetAboutMe handles GET /api/aboutme. The aggregate is served from the
// page cache when present; within the TTL repeated reads return the stored
// JSON verbatim.
func (s *Server) GetAboutMe(c *fiber.Ctx) error {
	var aboutMe models.AboutMe

	found, err := cache.GetJSON(c.Context(), s.redis, cache.AboutMeKey, &aboutMe)
	if err == nil && found {
		middleware.PageCacheHits.WithLabelValues("aboutme", "hit").Inc()
		return models.Respond(c, fiber.StatusOK, aboutMe)
	}
	middleware.PageCacheHits.WithLabelValues("aboutme", "miss").Inc()

	fresh, err := s.aboutMeRepo.GetAll(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := cache.SetJSON(c.Context(), s.redis, cache.AboutMeKey, fresh, cache.PageTTL); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "page cache store failed",
			slog.String("key", cache.AboutMeKey), slog.String("error", err.Error()))
	}
	return models.Respond(c, fiber.StatusOK, fresh)
}

// PutAboutMe handles PUT /api/aboutme (superuser only). All sections are
// validated before any write; the replacement is all-or-nothing.
func (s *Server) PutAboutMe(c *fiber.Ctx) error {
	var req models.AboutMe
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validateAboutMe(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	if err := s.aboutMeRepo.ReplaceAll(c.Context(), &req); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.invalidatePageCache(c, cache.AboutMeKey)

	return models.Respond(c, fiber.StatusOK, req)
}

func validateAboutMe(aboutMe *models.AboutMe) error {
	if len(aboutMe.Work) == 0 || len(aboutMe.Education) == 0 ||
		len(aboutMe.Projects) == 0 || len(aboutMe.Skills) == 0 {
		return models.NewValidationError("All sections (work, education, projects, skills) are required")
	}
	if len(aboutMe.Work) > maxWorkEntries {
		return models.NewValidationError("At most 2 work experience entries are allowed")
	}
	for _, work := range aboutMe.Work {
		if len(work.Achievements) > maxAchievements {
			return models.NewValidationError("At most 3 achievements per work experience entry are allowed")
		}
	}
	if len(aboutMe.Education) > maxEducationEntries {
		return models.NewValidationError("At most 2 education entries are allowed")
	}
	return nil
}

// invalidatePageCache removes every cache entry under the key's prefix.
// Failures are logged, never propagated; the next read repopulates.
func (s *Server) invalidatePageCache(c *fiber.Ctx, key string) {
	if _, err := cache.DeleteByPrefix(c.Context(), s.redis, key); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "page cache invalidation failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}
