package service

import (
	"context"
	"fmt"
	"strings"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
)

// AdminService 管理员审批与运营看板
type AdminService struct {
	Users         UserStore
	Personalities PersonalityStore
	Gateway       InferenceGateway
}

func NewAdminService(users UserStore, personalities PersonalityStore, gateway InferenceGateway) *AdminService {
	return &AdminService{Users: users, Personalities: personalities, Gateway: gateway}
}

type DashboardStats struct {
	PendingTeachers      int64 `json:"pendingTeachers"`
	ApprovedTeachers     int64 `json:"approvedTeachers"`
	TotalStudents        int64 `json:"totalStudents"`
	PendingPersonalities int64 `json:"pendingPersonalities"`
}

func (s *AdminService) Stats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.PendingTeachers, err = s.Users.CountByRoleStatus(model.Teacher, model.AccountPending); err != nil {
		return nil, err
	}
	if stats.ApprovedTeachers, err = s.Users.CountByRoleStatus(model.Teacher, model.AccountApproved); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.Users.CountByRole(model.Student); err != nil {
		return nil, err
	}
	if stats.PendingPersonalities, err = s.Personalities.CountByStatus(model.PersonalityPending); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) ListTeachers() ([]model.User, error) {
	return s.Users.ListTeachers()
}

// UpdateTeacherStatus 审核教师账号。合法迁移：
// pending -> approved/rejected，rejected -> approved（复议），approved -> rejected（显式撤销）。
func (s *AdminService) UpdateTeacherStatus(userID uint, status model.AccountStatus) (*model.User, error) {
	if status != model.AccountApproved && status != model.AccountRejected {
		return nil, util.ErrInvalidTransition
	}

	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if user.Role != model.Teacher {
		return nil, util.ErrPermissionDenied
	}

	if user.Status == status {
		return user, nil
	}

	user.Status = status
	if err := s.Users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) ListPersonalities() ([]model.PersonalityWithTeacher, error) {
	return s.Personalities.ListAll()
}

func (s *AdminService) ListPendingPersonalities() ([]model.PersonalityWithTeacher, error) {
	return s.Personalities.ListPending()
}

// ReviewPersonality 审批人格。驳回必须附反馈，空反馈视为取消操作，
// 状态保持不变；通过时清空历史反馈并激活。editedPrompt 非空时
// 以管理员修订稿覆盖生成的提示词。
func (s *AdminService) ReviewPersonality(id uint, status model.PersonalityStatus, feedback, editedPrompt string) (*model.AIPersonality, error) {
	if status != model.PersonalityApproved && status != model.PersonalityRejected {
		return nil, util.ErrInvalidTransition
	}

	p, err := s.Personalities.FindByID(id)
	if err != nil {
		return nil, util.ErrPersonalityNotFound
	}

	if status == model.PersonalityRejected && strings.TrimSpace(feedback) == "" {
		return nil, util.ErrFeedbackRequired
	}

	p.ApprovalStatus = status
	if status == model.PersonalityApproved {
		p.IsActive = true
		p.AdminFeedback = nil
	} else {
		p.IsActive = false
		fb := feedback
		p.AdminFeedback = &fb
	}

	if strings.TrimSpace(editedPrompt) != "" {
		p.SystemPrompt = editedPrompt
	}

	if err := s.Personalities.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// TogglePersonalityActive 仅 approved 的人格可以启停
func (s *AdminService) TogglePersonalityActive(id uint, active bool) (*model.AIPersonality, error) {
	p, err := s.Personalities.FindByID(id)
	if err != nil {
		return nil, util.ErrPersonalityNotFound
	}
	if p.ApprovalStatus != model.PersonalityApproved {
		return nil, util.ErrNotApproved
	}

	p.IsActive = active
	if err := s.Personalities.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// TestPersonalityChat 审批前试聊：单轮、不落库、不要求 approved
func (s *AdminService) TestPersonalityChat(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	combined := fmt.Sprintf(
		"%s\n\nIMPORTANT: The above is your persona. Reply to the student's question below staying strictly in character.\n\nStudent: %s",
		systemPrompt, userMessage,
	)

	text, err := s.Gateway.GenerateText(ctx, combined)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrGatewayFailure, err)
	}
	return SanitizeAIResponse(text), nil
}
