package server

import (
	"log/slog"
	"unicode/utf8"

	"myblog/internal/cache"
	"myblog/internal/middleware"
	"myblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetWelcome handles GET /api/welcome. Served from the page cache when
// present; 404 until the singleton has been written.
func (s *Server) GetWelcome(c *fiber.Ctx) error {
	var welcome models.Welcome

	found, err := cache.GetJSON(c.Context(), s.redis, cache.WelcomeKey, &welcome)
	if err == nil && found {
		middleware.PageCacheHits.WithLabelValues("welcome", "hit").Inc()
		return models.Respond(c, fiber.StatusOK, welcome)
	}
	middleware.PageCacheHits.WithLabelValues("welcome", "miss").Inc()

	fresh, err := s.welcomeRepo.Get(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := cache.SetJSON(c.Context(), s.redis, cache.WelcomeKey, fresh, cache.PageTTL); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "page cache store failed",
			slog.String("key", cache.WelcomeKey), slog.String("error", err.Error()))
	}
	return models.Respond(c, fiber.StatusOK, fresh)
}

// PutWelcome handles PUT /api/welcome (superuser only). The singleton and
// its description lines are replaced in one transaction.
func (s *Server) PutWelcome(c *fiber.Ctx) error {
	var req struct {
		Title        string   `json:"title"`
		ButtonText   string   `json:"button_text"`
		Descriptions []string `json:"descriptions"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || utf8.RuneCountInString(req.Title) > 10 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required and must be at most 10 characters"))
	}
	if req.ButtonText == "" || utf8.RuneCountInString(req.ButtonText) > 10 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Button text is required and must be at most 10 characters"))
	}
	for _, d := range req.Descriptions {
		if d == "" || utf8.RuneCountInString(d) > 10 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Each description is required and must be at most 10 characters"))
		}
	}

	welcome := models.Welcome{
		Title:      req.Title,
		ButtonText: req.ButtonText,
	}
	for _, d := range req.Descriptions {
		welcome.Descriptions = append(welcome.Descriptions, models.Description{Content: d})
	}

	stored, err := s.welcomeRepo.Replace(c.Context(), &welcome)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.invalidatePageCache(c, cache.WelcomeKey)

	return models.Respond(c, fiber.StatusOK, stored)
}
