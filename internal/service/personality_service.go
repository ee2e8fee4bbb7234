package service

import (
	"fmt"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"time"
)

// PersonalityStore 人格存取契约；Save 按 TeacherID upsert
type PersonalityStore interface {
	FindByID(id uint) (*model.AIPersonality, error)
	FindByTeacherID(teacherID uint) (*model.AIPersonality, error)
	Save(p *model.AIPersonality) error
	Update(p *model.AIPersonality) error
	ListAll() ([]model.PersonalityWithTeacher, error)
	ListPending() ([]model.PersonalityWithTeacher, error)
	ListApprovedActive() ([]model.PersonalityWithTeacher, error)
	CountByStatus(status model.PersonalityStatus) (int64, error)
}

// PersonalityService 人格合成引擎：分析结果 -> 系统提示词。
// 合成是确定性模板填充，不经过推理网关。
type PersonalityService struct {
	Videos        VideoStore
	Analyses      AnalysisStore
	Users         UserStore
	Personalities PersonalityStore
}

func NewPersonalityService(videos VideoStore, analyses AnalysisStore, users UserStore, personalities PersonalityStore) *PersonalityService {
	return &PersonalityService{Videos: videos, Analyses: analyses, Users: users, Personalities: personalities}
}

// Generate 从视频的分析结果合成人格并 upsert。重新生成总是将状态
// 重置为 pending、停用并清空历史反馈，旧的审批结论对新提示词无效。
func (s *PersonalityService) Generate(videoID uint) (*model.AIPersonality, error) {
	video, err := s.Videos.FindByID(videoID)
	if err != nil {
		return nil, util.ErrVideoNotFound
	}

	analysis, err := s.Analyses.FindByVideoID(video.ID)
	if err != nil {
		return nil, util.ErrAnalysisRequired
	}

	teacherName := "Teacher"
	if teacher, terr := s.Users.FindByID(video.TeacherID); terr == nil && teacher.Name != "" {
		teacherName = teacher.Name
	}

	personality := &model.AIPersonality{
		TeacherID:       video.TeacherID,
		PersonalityName: teacherName + "'s AI Clone",
		SystemPrompt:    BuildSystemPrompt(teacherName, analysis),
		ApprovalStatus:  model.PersonalityPending,
		AdminFeedback:   nil,
		IsActive:        false,
		GeneratedAt:     time.Now(),
	}

	if err := s.Personalities.Save(personality); err != nil {
		return nil, err
	}
	return personality, nil
}

// GetByTeacher 教师查看自己的人格
func (s *PersonalityService) GetByTeacher(teacherID uint) (*model.AIPersonality, error) {
	p, err := s.Personalities.FindByTeacherID(teacherID)
	if err != nil {
		return nil, util.ErrPersonalityNotFound
	}
	return p, nil
}

// BuildSystemPrompt 纯函数：相同分析输入恒产生字节一致的提示词
func BuildSystemPrompt(teacherName string, analysis *model.VideoAnalysis) string {
	exampleTypes := analysis.ExampleTypes
	if exampleTypes == "" {
		exampleTypes = "relatable examples"
	}

	return fmt.Sprintf(`You are %s, a teacher known for being %s.
Your teaching style is UNIQUE: %s.
You OFTEN use these specific phrases: %s.
Your pacing is %s.

Instructions:
1. ALWAYS stay in character.
2. Use your signature phrases listed above naturally.
3. Explain concepts using your typical examples: %s.
4. If asked about your teaching method, describe it as: %s.
5. Engage with students using your unique traits: %s.
6. Speak in English only.
`,
		teacherName,
		analysis.ToneDescription,
		analysis.TeachingStyle,
		analysis.CommonPhrases,
		analysis.Pacing,
		exampleTypes,
		analysis.TeachingMethodology,
		analysis.KeyCharacteristics,
	)
}
