package service

import (
	"context"
	"strings"

	"myblog/internal/models"
	"myblog/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	isSuperuser func(ctx context.Context, userID uint) (bool, error)
}

type CreateReplyInput struct {
	UserID        uint
	MessageID     uint
	Content       string
	ParentReplyID *uint
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	isSuperuser func(ctx context.Context, userID uint) (bool, error),
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		isSuperuser: isSuperuser,
	}
}

func (s *MessageService) CreateMessage(ctx context.Context, userID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	message := &models.Message{
		UserID:  userID,
		Content: content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return s.messageRepo.GetByID(ctx, message.ID)
}

func (s *MessageService) ListMessages(ctx context.Context, page, pageSize int) ([]models.Message, int64, error) {
	return s.messageRepo.List(ctx, page, pageSize)
}

func (s *MessageService) DeleteMessage(ctx context.Context, userID, messageID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, message.UserID, "messages"); err != nil {
		return err
	}
	return s.messageRepo.Delete(ctx, messageID)
}

func (s *MessageService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Reply, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if _, err := s.messageRepo.GetByID(ctx, in.MessageID); err != nil {
		return nil, err
	}

	if in.ParentReplyID != nil {
		parent, err := s.messageRepo.GetReplyByID(ctx, *in.ParentReplyID)
		if err != nil {
			return nil, err
		}
		if parent.MessageID != in.MessageID {
			return nil, models.NewValidationError("Parent reply belongs to a different message")
		}
	}

	reply := &models.Reply{
		MessageID:     in.MessageID,
		UserID:        in.UserID,
		Content:       in.Content,
		ParentReplyID: in.ParentReplyID,
	}
	if err := s.messageRepo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return s.messageRepo.GetReplyByID(ctx, reply.ID)
}

func (s *MessageService) DeleteReply(ctx context.Context, userID, replyID uint) error {
	reply, err := s.messageRepo.GetReplyByID(ctx, replyID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, reply.UserID, "replies"); err != nil {
		return err
	}
	return s.messageRepo.DeleteReply(ctx, replyID)
}

func (s *MessageService) authorize(ctx context.Context, userID, ownerID uint, noun string) error {
	if userID == ownerID {
		return nil
	}
	if s.isSuperuser == nil {
		return models.NewForbiddenError("You can only delete your own " + noun)
	}
	superuser, err := s.isSuperuser(ctx, userID)
	if err != nil {
		return err
	}
	if !superuser {
		return models.NewForbiddenError("You can only delete your own " + noun)
	}
	return nil
}
