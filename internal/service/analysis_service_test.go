package service

import (
	"context"
	"errors"
	"strings"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"testing"
)

const validAnalysisJSON = `{
  "teacher_gender": "female",
  "teaching_style": "Interactive and example-driven",
  "common_phrases": ["Let's solve this step by step", "Check your work"],
  "tone_and_energy": { "level": 7, "description": "Energetic and engaging" },
  "pacing": "fast",
  "teaching_methodology": "Problem-first approach",
  "example_types": "Numerical examples",
  "voice_characteristics": "Clear and bright",
  "unique_traits": ["Uses colored markers", "Asks frequent questions"]
}`

func newAnalysisFixture() (*AnalysisService, *fakeVideoStore, *fakeAnalysisStore, *fakeBlobStore, *fakeGateway) {
	videos := newFakeVideoStore()
	analyses := newFakeAnalysisStore()
	blobs := newFakeBlobStore()
	gateway := &fakeGateway{}
	svc := NewAnalysisService(videos, analyses, blobs, gateway)
	return svc, videos, analyses, blobs, gateway
}

func addVideo(videos *fakeVideoStore, blobs *fakeBlobStore, subject string, size int) *model.Video {
	v := &model.Video{
		TeacherID:    1,
		Title:        "Lesson 1",
		Subject:      subject,
		GradeLevel:   "Grade 9",
		ObjectKey:    "videos/1/lesson1.mp4",
		MimeType:     "video/mp4",
		UploadStatus: model.VideoUploaded,
	}
	videos.Create(v)
	if size > 0 {
		blobs.blobs[v.ObjectKey] = make([]byte, size)
	}
	return v
}

func TestAnalyzeSmallVideoUsesMedia(t *testing.T) {
	svc, videos, _, blobs, gateway := newAnalysisFixture()
	video := addVideo(videos, blobs, "Physics", 1024)
	gateway.mediaText = validAnalysisJSON

	result, err := svc.Analyze(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Strategy != StrategyMedia {
		t.Errorf("strategy = %q, want %q", result.Strategy, StrategyMedia)
	}
	if gateway.mediaCalls != 1 {
		t.Errorf("media calls = %d, want 1", gateway.mediaCalls)
	}
	if result.Analysis.TeachingStyle == "" {
		t.Error("teachingStyle is empty")
	}
	if result.Analysis.TeacherGender != model.GenderFemale {
		t.Errorf("gender = %v, want Female", result.Analysis.TeacherGender)
	}
	if result.Analysis.ToneDescription != "Energetic and engaging (Level: 7)" {
		t.Errorf("tone = %q", result.Analysis.ToneDescription)
	}
	if !strings.Contains(result.Analysis.CommonPhrases, "step by step") {
		t.Errorf("phrases not joined: %q", result.Analysis.CommonPhrases)
	}
	if result.Analysis.LanguageMix != "English Only" {
		t.Errorf("languageMix = %q", result.Analysis.LanguageMix)
	}
	if video.UploadStatus != model.VideoAnalyzed {
		t.Errorf("video status = %v, want analyzed", video.UploadStatus)
	}
}

func TestAnalyzeLargeVideoSkipsMedia(t *testing.T) {
	svc, videos, _, blobs, gateway := newAnalysisFixture()
	// 25MB，超过 20MB 直传上限
	video := addVideo(videos, blobs, "Algebra", 25*1024*1024)
	gateway.textText = validAnalysisJSON

	result, err := svc.Analyze(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if gateway.mediaCalls != 0 {
		t.Errorf("media calls = %d, video bytes must never reach the gateway", gateway.mediaCalls)
	}
	if result.Strategy != StrategyMetadata {
		t.Errorf("strategy = %q, want %q", result.Strategy, StrategyMetadata)
	}
	if result.Analysis.TeachingStyle == "" {
		t.Error("teachingStyle is empty")
	}
	if !strings.Contains(gateway.lastTextPrompt, "Algebra") {
		t.Error("metadata prompt does not mention the subject")
	}
	if video.UploadStatus != model.VideoAnalyzed {
		t.Errorf("video status = %v, want analyzed", video.UploadStatus)
	}
}

func TestAnalyzeFallsBackToBuiltinProfile(t *testing.T) {
	svc, videos, _, blobs, gateway := newAnalysisFixture()
	video := addVideo(videos, blobs, "Algebra", 1024)
	gateway.mediaErr = errors.New("quota exceeded")
	gateway.textErr = errors.New("quota exceeded")

	result, err := svc.Analyze(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Strategy != StrategyFallback {
		t.Errorf("strategy = %q, want %q", result.Strategy, StrategyFallback)
	}
	// 数学类内置档案
	if result.Analysis.TeacherGender != model.GenderMale {
		t.Errorf("gender = %v, want Male for math profile", result.Analysis.TeacherGender)
	}
	if !strings.Contains(result.Analysis.CommonPhrases, "Step by step") {
		t.Errorf("phrases = %q, want math profile phrases", result.Analysis.CommonPhrases)
	}
	if video.UploadStatus != model.VideoAnalyzed {
		t.Errorf("video status = %v, want analyzed", video.UploadStatus)
	}
}

func TestAnalyzeNonMathFallbackProfile(t *testing.T) {
	svc, videos, _, blobs, gateway := newAnalysisFixture()
	video := addVideo(videos, blobs, "History", 1024)
	gateway.mediaErr = errors.New("down")
	gateway.textErr = errors.New("down")

	result, err := svc.Analyze(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Analysis.TeacherGender != model.GenderFemale {
		t.Errorf("gender = %v, want Female for general profile", result.Analysis.TeacherGender)
	}
}

func TestAnalyzeMalformedReplyIsTerminal(t *testing.T) {
	svc, videos, _, blobs, gateway := newAnalysisFixture()
	video := addVideo(videos, blobs, "Physics", 1024)
	gateway.mediaText = "I could not analyze the video, sorry."

	_, err := svc.Analyze(context.Background(), video.ID)
	if !errors.Is(err, util.ErrMalformedAnalysis) {
		t.Fatalf("err = %v, want ErrMalformedAnalysis", err)
	}

	// 解析失败不触发降级，网关已应答
	if gateway.textCalls != 0 {
		t.Errorf("text calls = %d, parse failure must not trigger fallback", gateway.textCalls)
	}
	if video.UploadStatus != model.VideoFailed {
		t.Errorf("video status = %v, want failed", video.UploadStatus)
	}
}

func TestAnalyzeMissingBlob(t *testing.T) {
	svc, videos, _, blobs, _ := newAnalysisFixture()
	video := addVideo(videos, blobs, "Physics", 0) // 无字节

	_, err := svc.Analyze(context.Background(), video.ID)
	if !errors.Is(err, util.ErrBlobMissing) {
		t.Fatalf("err = %v, want ErrBlobMissing", err)
	}
	if video.UploadStatus != model.VideoFailed {
		t.Errorf("video status = %v, want failed, never stuck in processing", video.UploadStatus)
	}
}

func TestAnalyzeVideoNotFound(t *testing.T) {
	svc, _, _, _, _ := newAnalysisFixture()

	_, err := svc.Analyze(context.Background(), 42)
	if !errors.Is(err, util.ErrVideoNotFound) {
		t.Fatalf("err = %v, want ErrVideoNotFound", err)
	}
}

func TestAnalyzeReplacesPreviousResult(t *testing.T) {
	svc, videos, analyses, blobs, gateway := newAnalysisFixture()
	video := addVideo(videos, blobs, "Physics", 1024)
	gateway.mediaText = validAnalysisJSON

	first, err := svc.Analyze(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("first Analyze failed: %v", err)
	}
	second, err := svc.Analyze(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("second Analyze failed: %v", err)
	}

	if first.Analysis.ID != second.Analysis.ID {
		t.Errorf("re-analysis created a new row: %d vs %d", first.Analysis.ID, second.Analysis.ID)
	}
	if len(analyses.byVideo) != 1 {
		t.Errorf("stored analyses = %d, want 1 per video", len(analyses.byVideo))
	}
}

func TestExtractJSONTolerance(t *testing.T) {
	fenced := "Here you go:\n```json\n{\"a\": 1}\n```\nHope that helps!"
	got, err := ExtractJSON(fenced)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("got %q", got)
	}

	if _, err := ExtractJSON("no braces at all"); !errors.Is(err, util.ErrMalformedAnalysis) {
		t.Errorf("err = %v, want ErrMalformedAnalysis", err)
	}
}

func TestParseAnalysisShapes(t *testing.T) {
	// 扁平 tone 字符串 + 字符串形态的 phrases
	raw := `{"teaching_style": "Direct", "tone_and_energy": "Calm", "common_phrases": "Good question"}`
	a, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("parseAnalysis failed: %v", err)
	}
	if a.ToneDescription != "Calm" {
		t.Errorf("tone = %q, want Calm", a.ToneDescription)
	}
	if a.CommonPhrases != "Good question" {
		t.Errorf("phrases = %q", a.CommonPhrases)
	}
	if a.Pacing != "Moderate" {
		t.Errorf("pacing default = %q, want Moderate", a.Pacing)
	}

	// 缺省字段
	empty, err := parseAnalysis(`{}`)
	if err != nil {
		t.Fatalf("parseAnalysis failed: %v", err)
	}
	if empty.TeachingStyle != "Not specified" {
		t.Errorf("style default = %q", empty.TeachingStyle)
	}
	if empty.ToneDescription != "Neutral" {
		t.Errorf("tone default = %q", empty.ToneDescription)
	}
	if empty.TeacherGender != model.GenderMale {
		t.Errorf("gender default = %v, want Male", empty.TeacherGender)
	}
}
