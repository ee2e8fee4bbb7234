package service

import (
	"errors"
	"strings"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"testing"
)

func newPersonalityFixture() (*PersonalityService, *fakeVideoStore, *fakeAnalysisStore, *fakeUserStore, *fakePersonalityStore) {
	videos := newFakeVideoStore()
	analyses := newFakeAnalysisStore()
	users := newFakeUserStore()
	personalities := newFakePersonalityStore()
	svc := NewPersonalityService(videos, analyses, users, personalities)
	return svc, videos, analyses, users, personalities
}

func seedAnalyzedVideo(videos *fakeVideoStore, analyses *fakeAnalysisStore, users *fakeUserStore) *model.Video {
	teacher := &model.User{Name: "Ms. Chen", Email: "chen@example.com", Role: model.Teacher, Status: model.AccountApproved}
	users.Create(teacher)

	video := &model.Video{TeacherID: teacher.ID, Title: "Fractions", Subject: "Math", UploadStatus: model.VideoAnalyzed}
	videos.Create(video)

	analyses.Upsert(&model.VideoAnalysis{
		VideoID:             video.ID,
		TeachingStyle:       "Interactive and example-driven",
		CommonPhrases:       "Let's solve this step by step, Check your work",
		ToneDescription:     "Energetic and engaging (Level: 7)",
		Pacing:              "Fast",
		TeachingMethodology: "Problem-first approach",
		ExampleTypes:        "Numerical examples",
		KeyCharacteristics:  "Uses colored markers",
	})
	return video
}

func TestGeneratePersonality(t *testing.T) {
	svc, videos, analyses, users, store := newPersonalityFixture()
	video := seedAnalyzedVideo(videos, analyses, users)

	p, err := svc.Generate(video.ID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if p.PersonalityName != "Ms. Chen's AI Clone" {
		t.Errorf("name = %q", p.PersonalityName)
	}
	if p.ApprovalStatus != model.PersonalityPending {
		t.Errorf("status = %v, want pending", p.ApprovalStatus)
	}
	if p.IsActive {
		t.Error("new personality must not be active")
	}
	if p.AdminFeedback != nil {
		t.Error("new personality must have no feedback")
	}
	if !strings.Contains(p.SystemPrompt, "You are Ms. Chen") {
		t.Errorf("prompt missing teacher name: %q", p.SystemPrompt)
	}
	if !strings.Contains(p.SystemPrompt, "Let's solve this step by step") {
		t.Error("prompt missing signature phrases")
	}
	if len(store.byID) != 1 {
		t.Errorf("stored personalities = %d, want 1", len(store.byID))
	}
}

func TestGenerateOverwritesAndResetsReview(t *testing.T) {
	svc, videos, analyses, users, store := newPersonalityFixture()
	video := seedAnalyzedVideo(videos, analyses, users)

	first, err := svc.Generate(video.ID)
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}

	// 模拟一次已通过并带历史反馈的状态
	fb := "old feedback"
	first.ApprovalStatus = model.PersonalityApproved
	first.IsActive = true
	first.AdminFeedback = &fb
	store.Update(first)

	second, err := svc.Generate(video.ID)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("regeneration created a new row: %d vs %d", second.ID, first.ID)
	}
	if len(store.byID) != 1 {
		t.Errorf("stored personalities = %d, want 1 per teacher", len(store.byID))
	}
	if second.ApprovalStatus != model.PersonalityPending {
		t.Errorf("status = %v, regeneration must reset to pending", second.ApprovalStatus)
	}
	if second.IsActive {
		t.Error("regeneration must deactivate")
	}
	if second.AdminFeedback != nil {
		t.Error("regeneration must clear feedback")
	}
}

func TestGenerateRequiresAnalysis(t *testing.T) {
	svc, videos, _, users, _ := newPersonalityFixture()
	teacher := &model.User{Name: "Mr. Khan", Role: model.Teacher}
	users.Create(teacher)
	video := &model.Video{TeacherID: teacher.ID, Title: "Intro"}
	videos.Create(video)

	_, err := svc.Generate(video.ID)
	if !errors.Is(err, util.ErrAnalysisRequired) {
		t.Fatalf("err = %v, want ErrAnalysisRequired", err)
	}
}

func TestGenerateVideoNotFound(t *testing.T) {
	svc, _, _, _, _ := newPersonalityFixture()

	_, err := svc.Generate(99)
	if !errors.Is(err, util.ErrVideoNotFound) {
		t.Fatalf("err = %v, want ErrVideoNotFound", err)
	}
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	analysis := &model.VideoAnalysis{
		TeachingStyle:       "Narrative-driven",
		CommonPhrases:       "Imagine you are..., Here is the story",
		ToneDescription:     "Warm and friendly (Level: 7)",
		Pacing:              "Moderate",
		TeachingMethodology: "Context-first explanation",
		KeyCharacteristics:  "Uses analogies",
	}

	a := BuildSystemPrompt("Ms. Rivera", analysis)
	b := BuildSystemPrompt("Ms. Rivera", analysis)
	if a != b {
		t.Error("same analysis produced different prompts")
	}

	if !strings.Contains(a, "Speak in English only.") {
		t.Error("prompt missing English-only instruction")
	}
	// 缺省 example types 用占位文案
	if !strings.Contains(a, "relatable examples") {
		t.Error("prompt missing example types default")
	}
}
