package server

import (
	"myblog/internal/models"
	"myblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultMessagePageSize = 3

// GetMessages handles GET /api/messages (public, paginated; replies nested
// oldest first).
func (s *Server) GetMessages(c *fiber.Ctx) error {
	page := parsePage(c, defaultMessagePageSize, maxBlogPageSize)

	messages, count, err := s.messageService.ListMessages(c.Context(), page.Page, page.PageSize)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusOK, PagedResult{Count: count, Results: messages})
}

// CreateMessage handles POST /api/messages (authenticated).
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.CreateMessage(c.Context(), s.currentUser(c).ID, req.Content)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusCreated, message)
}

// DeleteMessage handles DELETE /api/messages/:id (author or superuser).
// Replies to the message go with it.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.DeleteMessage(c.Context(), s.currentUser(c).ID, id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Message deleted")
}

// CreateReply handles POST /api/messages/:id/replies (authenticated).
func (s *Server) CreateReply(c *fiber.Ctx) error {
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content       string `json:"content"`
		ParentReplyID *uint  `json:"parent_reply_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.messageService.CreateReply(c.Context(), service.CreateReplyInput{
		UserID:        s.currentUser(c).ID,
		MessageID:     messageID,
		Content:       req.Content,
		ParentReplyID: req.ParentReplyID,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.Respond(c, fiber.StatusCreated, reply)
}

// DeleteReply handles DELETE /api/messages/:id/replies/:replyId (author or
// superuser).
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "id"); err != nil {
		return nil
	}
	replyID, err := s.parseID(c, "replyId")
	if err != nil {
		return nil
	}

	if err := s.messageService.DeleteReply(c.Context(), s.currentUser(c).ID, replyID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Reply deleted")
}
