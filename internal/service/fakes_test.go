package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"teach_clone_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// 内存版存储实现，测试时替代 gorm 仓库

type fakeVideoStore struct {
	videos map[uint]*model.Video
	nextID uint
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[uint]*model.Video), nextID: 1}
}

func (s *fakeVideoStore) Create(video *model.Video) error {
	video.ID = s.nextID
	s.nextID++
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(id uint) (*model.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (s *fakeVideoStore) FindByTeacherID(teacherID uint) ([]model.Video, error) {
	var out []model.Video
	for _, v := range s.videos {
		if v.TeacherID == teacherID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeVideoStore) UpdateStatus(id uint, status model.VideoStatus) error {
	v, ok := s.videos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.UploadStatus = status
	return nil
}

type fakeAnalysisStore struct {
	byVideo map[uint]*model.VideoAnalysis
	// LatestByTeacherID 的直接映射，测试里显式填充
	byTeacher map[uint]*model.VideoAnalysis
	nextID    uint
}

func newFakeAnalysisStore() *fakeAnalysisStore {
	return &fakeAnalysisStore{
		byVideo:   make(map[uint]*model.VideoAnalysis),
		byTeacher: make(map[uint]*model.VideoAnalysis),
		nextID:    1,
	}
}

func (s *fakeAnalysisStore) FindByVideoID(videoID uint) (*model.VideoAnalysis, error) {
	a, ok := s.byVideo[videoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (s *fakeAnalysisStore) LatestByTeacherID(teacherID uint) (*model.VideoAnalysis, error) {
	a, ok := s.byTeacher[teacherID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (s *fakeAnalysisStore) Upsert(analysis *model.VideoAnalysis) error {
	if existing, ok := s.byVideo[analysis.VideoID]; ok {
		analysis.ID = existing.ID
	} else {
		analysis.ID = s.nextID
		s.nextID++
	}
	s.byVideo[analysis.VideoID] = analysis
	return nil
}

type fakeBlobStore struct {
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Download(ctx context.Context, filename string) (io.ReadCloser, error) {
	data, ok := s.blobs[filename]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeGateway struct {
	mediaText string
	mediaErr  error
	textText  string
	textErr   error
	chatText  string
	chatErr   error

	mediaCalls int
	textCalls  int
	chatCalls  int

	lastTextPrompt   string
	lastSystemPrompt string
	lastMessage      string
	lastHistory      []GeminiMessage
}

func (g *fakeGateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.textCalls++
	g.lastTextPrompt = prompt
	return g.textText, g.textErr
}

func (g *fakeGateway) GenerateFromMedia(ctx context.Context, prompt string, media []byte, mimeType string) (string, error) {
	g.mediaCalls++
	return g.mediaText, g.mediaErr
}

func (g *fakeGateway) GenerateChat(ctx context.Context, systemPrompt string, history []GeminiMessage, newMessage string) (string, error) {
	g.chatCalls++
	g.lastSystemPrompt = systemPrompt
	g.lastHistory = history
	g.lastMessage = newMessage
	return g.chatText, g.chatErr
}

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (s *fakeUserStore) Create(user *model.User) error {
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(id uint) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByEmail(email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) Update(user *model.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) ListTeachers() ([]model.User, error) {
	var out []model.User
	for _, u := range s.users {
		if u.Role == model.Teacher {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) CountByRoleStatus(role model.UserRole, status model.AccountStatus) (int64, error) {
	var count int64
	for _, u := range s.users {
		if u.Role == role && u.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *fakeUserStore) CountByRole(role model.UserRole) (int64, error) {
	var count int64
	for _, u := range s.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

type fakePersonalityStore struct {
	byID   map[uint]*model.AIPersonality
	nextID uint
	saves  int
}

func newFakePersonalityStore() *fakePersonalityStore {
	return &fakePersonalityStore{byID: make(map[uint]*model.AIPersonality), nextID: 1}
}

func (s *fakePersonalityStore) FindByID(id uint) (*model.AIPersonality, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *fakePersonalityStore) FindByTeacherID(teacherID uint) (*model.AIPersonality, error) {
	for _, p := range s.byID {
		if p.TeacherID == teacherID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePersonalityStore) Save(p *model.AIPersonality) error {
	s.saves++
	if existing, err := s.FindByTeacherID(p.TeacherID); err == nil {
		p.ID = existing.ID
	} else {
		p.ID = s.nextID
		s.nextID++
	}
	s.byID[p.ID] = p
	return nil
}

func (s *fakePersonalityStore) Update(p *model.AIPersonality) error {
	if _, ok := s.byID[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.byID[p.ID] = p
	return nil
}

func (s *fakePersonalityStore) ListAll() ([]model.PersonalityWithTeacher, error) {
	var out []model.PersonalityWithTeacher
	for _, p := range s.byID {
		out = append(out, model.PersonalityWithTeacher{AIPersonality: *p})
	}
	return out, nil
}

func (s *fakePersonalityStore) ListPending() ([]model.PersonalityWithTeacher, error) {
	var out []model.PersonalityWithTeacher
	for _, p := range s.byID {
		if p.ApprovalStatus == model.PersonalityPending {
			out = append(out, model.PersonalityWithTeacher{AIPersonality: *p})
		}
	}
	return out, nil
}

func (s *fakePersonalityStore) ListApprovedActive() ([]model.PersonalityWithTeacher, error) {
	var out []model.PersonalityWithTeacher
	for _, p := range s.byID {
		if p.ApprovalStatus == model.PersonalityApproved && p.IsActive {
			out = append(out, model.PersonalityWithTeacher{AIPersonality: *p})
		}
	}
	return out, nil
}

func (s *fakePersonalityStore) CountByStatus(status model.PersonalityStatus) (int64, error) {
	var count int64
	for _, p := range s.byID {
		if p.ApprovalStatus == status {
			count++
		}
	}
	return count, nil
}

type fakeConversationStore struct {
	convs      map[uint]*model.Conversation
	messages   []model.Message
	nextConvID uint
	nextMsgID  uint
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{convs: make(map[uint]*model.Conversation), nextConvID: 1, nextMsgID: 1}
}

func (s *fakeConversationStore) FindByID(id uint) (*model.Conversation, error) {
	c, ok := s.convs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (s *fakeConversationStore) FindOrCreate(studentID, personalityID uint) (*model.Conversation, error) {
	for _, c := range s.convs {
		if c.StudentID == studentID && c.PersonalityID == personalityID {
			return c, nil
		}
	}
	now := time.Now()
	c := &model.Conversation{
		StudentID:     studentID,
		PersonalityID: personalityID,
		StartedAt:     now,
		LastMessageAt: now,
	}
	c.ID = s.nextConvID
	s.nextConvID++
	s.convs[c.ID] = c
	return c, nil
}

func (s *fakeConversationStore) ListByStudent(studentID uint) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range s.convs {
		if c.StudentID == studentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) Messages(conversationID uint) ([]model.Message, error) {
	var out []model.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) AppendMessage(m *model.Message) error {
	m.ID = s.nextMsgID
	s.nextMsgID++
	s.messages = append(s.messages, *m)
	return nil
}

func (s *fakeConversationStore) Touch(conversationID uint, at time.Time) error {
	c, ok := s.convs[conversationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	var count int64
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			count++
		}
	}
	c.LastMessageAt = at
	c.MessageCount = count
	return nil
}
