package repository

import (
	"errors"
	"teach_clone_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ConversationRepository struct {
	DB *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

func (r *ConversationRepository) FindByID(id uint) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.First(&conv, id).Error
	return &conv, err
}

// FindOrCreate 同一 (student, personality) 只存在一条会话
func (r *ConversationRepository) FindOrCreate(studentID, personalityID uint) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.DB.Where("student_id = ? AND personality_id = ?", studentID, personalityID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	conv = model.Conversation{
		StudentID:     studentID,
		PersonalityID: personalityID,
		StartedAt:     now,
		LastMessageAt: now,
	}
	if cerr := r.DB.Create(&conv).Error; cerr != nil {
		// 唯一索引冲突：并发创建时读回已有记录
		var existing model.Conversation
		if ferr := r.DB.Where("student_id = ? AND personality_id = ?", studentID, personalityID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, cerr
	}
	return &conv, nil
}

func (r *ConversationRepository) ListByStudent(studentID uint) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.DB.Where("student_id = ?", studentID).Order("last_message_at DESC").Find(&convs).Error
	return convs, err
}

// Messages 按创建时间升序，即权威聊天记录顺序
func (r *ConversationRepository) Messages(conversationID uint) ([]model.Message, error) {
	var msgs []model.Message
	err := r.DB.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *ConversationRepository) AppendMessage(m *model.Message) error {
	return r.DB.Create(m).Error
}

// Touch 更新最后消息时间并重新统计消息数
func (r *ConversationRepository) Touch(conversationID uint, at time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).Where("id = ?", conversationID).
			Updates(map[string]interface{}{
				"last_message_at": at,
				"message_count":   count,
			}).Error
	})
}
