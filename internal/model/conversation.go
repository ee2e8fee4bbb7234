package model

import "time"

// Conversation 由 (StudentID, PersonalityID) 唯一确定，find-or-create
// swagger:model Conversation
type Conversation struct {
	BaseModel
	StudentID     uint      `gorm:"uniqueIndex:idx_student_personality;not null" json:"studentId"`
	PersonalityID uint      `gorm:"uniqueIndex:idx_student_personality;not null" json:"personalityId"`
	StartedAt     time.Time `json:"startedAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	// 冗余计数，每轮对话后重新统计
	MessageCount int64 `json:"messageCount"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type SenderType string

const (
	SenderStudent SenderType = "student"
	SenderAI      SenderType = "ai"
)

// swagger:model Message
type Message struct {
	BaseModel
	ConversationID uint       `gorm:"index;not null" json:"conversationId"`
	SenderType     SenderType `gorm:"type:enum('student','ai');not null" json:"senderType"`
	MessageText    string     `gorm:"type:text" json:"messageText"`
	// 语音合成参数，仅 AI 消息携带
	VoicePitch  float64 `json:"voicePitch"`
	VoiceRate   float64 `json:"voiceRate"`
	VoiceLang   string  `gorm:"size:20" json:"voiceLang"`
	VoiceGender string  `gorm:"size:10" json:"voiceGender"`
	VoiceName   string  `gorm:"size:50" json:"voiceName"`
	AudioURL    string  `gorm:"size:512" json:"audioUrl,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
