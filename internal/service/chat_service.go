package service

import (
	"context"
	"fmt"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"teach_clone_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type ConversationStore interface {
	FindByID(id uint) (*model.Conversation, error)
	FindOrCreate(studentID, personalityID uint) (*model.Conversation, error)
	ListByStudent(studentID uint) ([]model.Conversation, error)
	Messages(conversationID uint) ([]model.Message, error)
	AppendMessage(m *model.Message) error
	Touch(conversationID uint, at time.Time) error
}

// historyWindow 每轮对话携带的最大历史条数
const historyWindow = 10

// ChatService 学生与 AI 人格的会话引擎
type ChatService struct {
	Conversations ConversationStore
	Personalities PersonalityStore
	Analyses      AnalysisStore
	Users         UserStore
	Gateway       InferenceGateway
}

func NewChatService(conversations ConversationStore, personalities PersonalityStore, analyses AnalysisStore, users UserStore, gateway InferenceGateway) *ChatService {
	return &ChatService{
		Conversations: conversations,
		Personalities: personalities,
		Analyses:      analyses,
		Users:         users,
		Gateway:       gateway,
	}
}

// TurnResult 一轮成功对话的产出
type TurnResult struct {
	AIResponse string       `json:"aiResponse"`
	Timestamp  time.Time    `json:"timestamp"`
	Voice      VoiceProfile `json:"voice"`
}

// ListApprovedPersonalities 学生可见的人格：approved 且 active，经短 TTL 缓存
func (s *ChatService) ListApprovedPersonalities() ([]model.PersonalityWithTeacher, error) {
	return s.Personalities.ListApprovedActive()
}

// GetOrCreateConversation 同一 (student, personality) 幂等复用会话。
// 只有 approved 且 active 的人格可以开启会话。
func (s *ChatService) GetOrCreateConversation(studentID, personalityID uint) (*model.Conversation, error) {
	p, err := s.Personalities.FindByID(personalityID)
	if err != nil {
		return nil, util.ErrPersonalityNotFound
	}
	if p.ApprovalStatus != model.PersonalityApproved || !p.IsActive {
		return nil, util.ErrNotApproved
	}
	return s.Conversations.FindOrCreate(studentID, personalityID)
}

func (s *ChatService) ListConversations(studentID uint) ([]model.Conversation, error) {
	return s.Conversations.ListByStudent(studentID)
}

// GetConversation 供调用方做属主校验
func (s *ChatService) GetConversation(conversationID uint) (*model.Conversation, error) {
	conv, err := s.Conversations.FindByID(conversationID)
	if err != nil {
		return nil, util.ErrConversationNotFound
	}
	return conv, nil
}

func (s *ChatService) GetMessages(conversationID uint) ([]model.Message, error) {
	return s.Conversations.Messages(conversationID)
}

// PostMessage 单轮对话协议。学生消息先落库，之后网关失败只返回错误：
// 学生消息保留、不产生 AI 回合，重试即重新提问。
func (s *ChatService) PostMessage(ctx context.Context, conversationID uint, text string) (*TurnResult, error) {
	conv, err := s.Conversations.FindByID(conversationID)
	if err != nil {
		return nil, util.ErrConversationNotFound
	}

	personality, err := s.Personalities.FindByID(conv.PersonalityID)
	if err != nil {
		return nil, util.ErrPersonalityNotFound
	}

	studentMsg := &model.Message{
		ConversationID: conv.ID,
		SenderType:     model.SenderStudent,
		MessageText:    text,
	}
	if err := s.Conversations.AppendMessage(studentMsg); err != nil {
		return nil, err
	}

	history, err := s.Conversations.Messages(conv.ID)
	if err != nil {
		return nil, err
	}

	reply, err := s.Gateway.GenerateChat(ctx, personality.SystemPrompt, buildHistoryWindow(history), text)
	if err != nil {
		logger.Log.Warn("chat gateway failed, student message retained",
			zap.Uint("conversationId", conv.ID), zap.Error(err))
		if terr := s.Conversations.Touch(conv.ID, time.Now()); terr != nil {
			logger.Log.Error("conversation touch failed", zap.Uint("conversationId", conv.ID), zap.Error(terr))
		}
		return nil, fmt.Errorf("%w: %v", util.ErrGatewayFailure, err)
	}

	cleaned := SanitizeAIResponse(reply)
	if cleaned == "" {
		if terr := s.Conversations.Touch(conv.ID, time.Now()); terr != nil {
			logger.Log.Error("conversation touch failed", zap.Uint("conversationId", conv.ID), zap.Error(terr))
		}
		return nil, fmt.Errorf("%w: empty reply", util.ErrGatewayFailure)
	}

	voice := s.voiceFor(personality)

	now := time.Now()
	aiMsg := &model.Message{
		ConversationID: conv.ID,
		SenderType:     model.SenderAI,
		MessageText:    cleaned,
		VoicePitch:     voice.Pitch,
		VoiceRate:      voice.Rate,
		VoiceLang:      voice.Lang,
		VoiceGender:    string(voice.Gender),
		VoiceName:      voice.VoiceName,
	}
	if err := s.Conversations.AppendMessage(aiMsg); err != nil {
		return nil, err
	}
	if err := s.Conversations.Touch(conv.ID, now); err != nil {
		return nil, err
	}

	return &TurnResult{AIResponse: cleaned, Timestamp: now, Voice: voice}, nil
}

// buildHistoryWindow 剔除刚写入的当前学生消息，截取最近 historyWindow 条，
// 映射为网关角色词表：student -> user，ai -> model
func buildHistoryWindow(msgs []model.Message) []GeminiMessage {
	if len(msgs) > 0 {
		msgs = msgs[:len(msgs)-1]
	}
	if len(msgs) > historyWindow {
		msgs = msgs[len(msgs)-historyWindow:]
	}

	window := make([]GeminiMessage, 0, len(msgs))
	for _, m := range msgs {
		role := "model"
		if m.SenderType == model.SenderStudent {
			role = "user"
		}
		window = append(window, GeminiMessage{Role: role, Text: m.MessageText})
	}
	return window
}

func (s *ChatService) voiceFor(p *model.AIPersonality) VoiceProfile {
	var analysis *model.VideoAnalysis
	if a, err := s.Analyses.LatestByTeacherID(p.TeacherID); err == nil {
		analysis = a
	}

	teacherName := ""
	if u, err := s.Users.FindByID(p.TeacherID); err == nil {
		teacherName = u.Name
	}

	return DeriveVoiceProfile(analysis, teacherName)
}
