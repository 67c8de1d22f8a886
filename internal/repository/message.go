package repository

import (
	"context"
	"errors"

	"myblog/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for guestbook data operations
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	List(ctx context.Context, page, pageSize int) ([]models.Message, int64, error)
	Delete(ctx context.Context, id uint) error
	CreateReply(ctx context.Context, reply *models.Reply) error
	GetReplyByID(ctx context.Context, id uint) (*models.Reply, error)
	DeleteReply(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Replies.User").
		First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	populateReplyTargets(&message)
	return &message, nil
}

func (r *messageRepository) List(ctx context.Context, page, pageSize int) ([]models.Message, int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Replies.User").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	for i := range messages {
		populateReplyTargets(&messages[i])
	}
	return messages, count, nil
}

// populateReplyTargets fills each reply's display name of the user it
// answers. Replies to the message itself have no target.
func populateReplyTargets(message *models.Message) {
	byID := make(map[uint]*models.Reply, len(message.Replies))
	for i := range message.Replies {
		byID[message.Replies[i].ID] = &message.Replies[i]
	}
	for i := range message.Replies {
		reply := &message.Replies[i]
		if reply.ParentReplyID == nil {
			continue
		}
		if parent, ok := byID[*reply.ParentReplyID]; ok && parent.User != nil {
			reply.ReplyTo = parent.User.Name
		}
	}
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Message{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Message", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) CreateReply(ctx context.Context, reply *models.Reply) error {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetReplyByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	err := r.db.WithContext(ctx).Preload("User").First(&reply, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reply", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reply, nil
}

func (r *messageRepository) DeleteReply(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replies that answered this one lose their parent but stay.
		if err := tx.Model(&models.Reply{}).Where("parent_reply_id = ?", id).
			Update("parent_reply_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Reply{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Reply", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
