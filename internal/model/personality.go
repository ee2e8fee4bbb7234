package model

import "time"

type PersonalityStatus string

const (
	PersonalityPending  PersonalityStatus = "pending"
	PersonalityApproved PersonalityStatus = "approved"
	PersonalityRejected PersonalityStatus = "rejected"
)

// AIPersonality 每位教师至多一条（TeacherID 唯一索引），重新生成原地覆盖。
// swagger:model AIPersonality
type AIPersonality struct {
	BaseModel
	TeacherID       uint              `gorm:"uniqueIndex;not null" json:"teacherId"`
	PersonalityName string            `gorm:"size:255" json:"personalityName"`
	SystemPrompt    string            `gorm:"type:text" json:"systemPrompt"`
	ApprovalStatus  PersonalityStatus `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"approvalStatus"`
	// 仅驳回时填写，通过时清空
	AdminFeedback *string   `gorm:"type:text" json:"adminFeedback,omitempty"`
	IsActive      bool      `gorm:"default:false" json:"isActive"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

func (AIPersonality) TableName() string {
	return "ai_personalities"
}

// PersonalityWithTeacher 列表视图：联表带出教师姓名
type PersonalityWithTeacher struct {
	AIPersonality
	TeacherName string `json:"teacherName"`
}
