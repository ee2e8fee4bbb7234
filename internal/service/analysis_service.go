package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"teach_clone_backend/pkg/logger"
	"teach_clone_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// 分析策略名，用于日志、指标和接口响应
const (
	StrategyMedia    = "media"
	StrategyMetadata = "metadata"
	StrategyFallback = "fallback_profile"
)

// MaxMediaBytes 媒体直传上限，超过则不发送视频字节，直接走元数据策略
const MaxMediaBytes = 20 * 1024 * 1024

type VideoStore interface {
	Create(video *model.Video) error
	FindByID(id uint) (*model.Video, error)
	FindByTeacherID(teacherID uint) ([]model.Video, error)
	UpdateStatus(id uint, status model.VideoStatus) error
}

type AnalysisStore interface {
	FindByVideoID(videoID uint) (*model.VideoAnalysis, error)
	LatestByTeacherID(teacherID uint) (*model.VideoAnalysis, error)
	Upsert(analysis *model.VideoAnalysis) error
}

type BlobStore interface {
	Download(ctx context.Context, filename string) (io.ReadCloser, error)
}

// AnalysisService 视频风格分析引擎。
// 策略链：媒体直传 -> 元数据推断 -> 内置档案，只有网关失败才触发降级，
// 解析失败是终态错误（说明网关已应答但内容不可用，重试换策略无意义）。
type AnalysisService struct {
	Videos   VideoStore
	Analyses AnalysisStore
	Blobs    BlobStore
	Gateway  InferenceGateway
}

func NewAnalysisService(videos VideoStore, analyses AnalysisStore, blobs BlobStore, gateway InferenceGateway) *AnalysisService {
	return &AnalysisService{Videos: videos, Analyses: analyses, Blobs: blobs, Gateway: gateway}
}

// AnalysisResult 附带本次实际走通的策略，便于排查降级
type AnalysisResult struct {
	Analysis *model.VideoAnalysis `json:"analysis"`
	Strategy string               `json:"strategy"`
}

// Analyze 执行完整分析流水线并落库。视频状态机：
// uploaded/failed/analyzed -> processing -> analyzed | failed，绝不停留在 processing。
func (s *AnalysisService) Analyze(ctx context.Context, videoID uint) (*AnalysisResult, error) {
	video, err := s.Videos.FindByID(videoID)
	if err != nil {
		return nil, util.ErrVideoNotFound
	}

	if err := s.Videos.UpdateStatus(video.ID, model.VideoProcessing); err != nil {
		return nil, err
	}

	result, err := s.analyze(ctx, video)
	if err != nil {
		if uerr := s.Videos.UpdateStatus(video.ID, model.VideoFailed); uerr != nil {
			logger.Log.Error("failed to mark video as failed", zap.Uint("videoId", video.ID), zap.Error(uerr))
		}
		return nil, err
	}

	if err := s.Videos.UpdateStatus(video.ID, model.VideoAnalyzed); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AnalysisService) analyze(ctx context.Context, video *model.Video) (*AnalysisResult, error) {
	blob, err := s.readBlob(ctx, video)
	if err != nil {
		return nil, err
	}

	raw, strategy := s.runStrategies(ctx, video, blob)
	monitoring.AnalysisStrategyCounter.WithLabelValues(strategy).Inc()

	analysis, err := parseAnalysis(raw)
	if err != nil {
		logger.Log.Error("analysis output unusable",
			zap.Uint("videoId", video.ID), zap.String("strategy", strategy), zap.Error(err))
		return nil, err
	}

	analysis.VideoID = video.ID
	analysis.LanguageMix = "English Only"
	analysis.AnalyzedAt = time.Now()

	if err := s.Analyses.Upsert(analysis); err != nil {
		return nil, err
	}

	logger.Log.Info("video analysis complete",
		zap.Uint("videoId", video.ID), zap.String("strategy", strategy))
	return &AnalysisResult{Analysis: analysis, Strategy: strategy}, nil
}

func (s *AnalysisService) readBlob(ctx context.Context, video *model.Video) ([]byte, error) {
	rc, err := s.Blobs.Download(ctx, video.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrBlobMissing, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrBlobMissing, err)
	}
	if len(data) == 0 {
		return nil, util.ErrBlobMissing
	}
	return data, nil
}

// runStrategies 逐级降级，最后一级内置档案永不失败
func (s *AnalysisService) runStrategies(ctx context.Context, video *model.Video, blob []byte) (string, string) {
	if int64(len(blob)) <= MaxMediaBytes {
		mimeType := video.MimeType
		if mimeType == "" {
			mimeType = "video/mp4"
		}
		text, err := s.Gateway.GenerateFromMedia(ctx, videoAnalysisPrompt, blob, mimeType)
		if err == nil {
			return text, StrategyMedia
		}
		logger.Log.Warn("media analysis failed, falling back to metadata",
			zap.Uint("videoId", video.ID), zap.Error(err))
	} else {
		logger.Log.Info("video exceeds media ceiling, using metadata analysis",
			zap.Uint("videoId", video.ID), zap.Int64("size", int64(len(blob))))
	}

	text, err := s.Gateway.GenerateText(ctx, metadataAnalysisPrompt(video))
	if err == nil {
		return text, StrategyMetadata
	}
	logger.Log.Warn("metadata analysis failed, using built-in profile",
		zap.Uint("videoId", video.ID), zap.Error(err))

	return fallbackProfile(video.Subject), StrategyFallback
}

const videoAnalysisPrompt = `Analyze this teaching video carefully using advanced video understanding capabilities.
Extract and return VALID JSON (no markdown):
{
  "teacher_gender": "male or female",
  "teaching_style": "Detailed teaching approach description",
  "common_phrases": ["Actual phrase 1", "Actual phrase 2", "Actual phrase 3"],
  "tone_and_energy": { "level": 7, "description": "Energy description" },
  "pacing": "slow, moderate, or fast",
  "teaching_methodology": "How they explain concepts",
  "example_types": "Types of examples used",
  "voice_characteristics": "Voice description",
  "unique_traits": ["Trait 1", "Trait 2"]
}
Return ONLY JSON.`

func metadataAnalysisPrompt(video *model.Video) string {
	return fmt.Sprintf(`You are analyzing a teaching video with these details:

Subject: %[1]s
Grade Level: %[2]s
Title: %[3]s

Based on this information, generate a realistic teaching style analysis.
Create 8 unique, subject-appropriate phrases this teacher would likely use.

Return VALID JSON (no markdown):
{
  "teacher_gender": "male or female (guess based on likely demographics for this subject)",
  "teaching_style": "Detailed description of how a %[1]s teacher for %[2]s would teach",
  "common_phrases": ["Subject-specific phrase 1", "...", "Subject-specific phrase 8"],
  "tone_and_energy": { "level": 6, "description": "Appropriate energy for this subject and grade" },
  "pacing": "moderate",
  "teaching_methodology": "How %[1]s teachers typically explain concepts",
  "example_types": "Examples appropriate for %[1]s",
  "voice_characteristics": "Professional and clear",
  "unique_traits": ["Trait specific to %[1]s teaching", "Student engagement technique"]
}

Make the phrases SPECIFIC to %[1]s. For example:
- Math: 'Let's solve this step by step'
- Science: 'Let's observe what happens'

Return ONLY JSON.`, video.Subject, video.GradeLevel, video.Title)
}

// 内置教学档案：数学类与通用类各一份，离线可用
const (
	mathFallbackProfile = `{
  "teacher_gender": "Male",
  "teaching_style": "Logical, step-by-step, and patient. Focuses on breaking down complex problems.",
  "common_phrases": ["Let's check our work", "Does that logic follow?", "Step by step", "What do we know?", "Plug it back in", "Always show your work"],
  "tone_and_energy": { "level": "6", "description": "Calm and reassuring" },
  "pacing": "Moderate",
  "teaching_methodology": "Problem-first approach.",
  "example_types": "Numerical examples followed by real-world applications.",
  "voice_characteristics": "Clear, mid-range pitch.",
  "unique_traits": ["Uses colored markers", "Pauses for understanding"]
}`

	generalFallbackProfile = `{
  "teacher_gender": "Female",
  "teaching_style": "Engaging and narrative-driven. Uses storytelling to make content relatable.",
  "common_phrases": ["Imagine you are...", "Here is the story", "Connect this to life", "How does that feel?", "Let's review", "No wrong answers"],
  "tone_and_energy": { "level": "7", "description": "Warm and friendly" },
  "pacing": "Moderate",
  "teaching_methodology": "Context-first explanation.",
  "example_types": "Relatable daily life scenarios.",
  "voice_characteristics": "Soft and clear.",
  "unique_traits": ["Smiles frequently", "Uses analogies"]
}`
)

func fallbackProfile(subject string) string {
	lower := strings.ToLower(subject)
	if strings.Contains(lower, "math") || strings.Contains(lower, "algebra") {
		return mathFallbackProfile
	}
	return generalFallbackProfile
}

// ExtractJSON 容忍模型输出中的 markdown 围栏和旁白，取首个 { 到末个 } 的片段
func ExtractJSON(text string) (string, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", util.ErrMalformedAnalysis)
	}
	return cleaned[start : end+1], nil
}

// flexString 接受字符串或字符串数组，数组按逗号合并；其他形态置空不报错
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if json.Unmarshal(b, &list) == nil {
		*f = flexString(strings.Join(list, ", "))
		return nil
	}
	*f = ""
	return nil
}

type rawAnalysis struct {
	TeacherGender        string          `json:"teacher_gender"`
	TeachingStyle        string          `json:"teaching_style"`
	CommonPhrases        flexString      `json:"common_phrases"`
	ToneAndEnergy        json.RawMessage `json:"tone_and_energy"`
	Pacing               string          `json:"pacing"`
	TeachingMethodology  string          `json:"teaching_methodology"`
	ExampleTypes         string          `json:"example_types"`
	VoiceCharacteristics string          `json:"voice_characteristics"`
	UniqueTraits         flexString      `json:"unique_traits"`
}

func parseAnalysis(raw string) (*model.VideoAnalysis, error) {
	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var data rawAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrMalformedAnalysis, err)
	}

	style := strings.TrimSpace(data.TeachingStyle)
	if style == "" {
		style = "Not specified"
	}
	pacing := strings.TrimSpace(data.Pacing)
	if pacing == "" {
		pacing = "Moderate"
	}

	return &model.VideoAnalysis{
		TeachingStyle:        style,
		CommonPhrases:        string(data.CommonPhrases),
		ToneDescription:      normalizeTone(data.ToneAndEnergy),
		Pacing:               pacing,
		TeachingMethodology:  data.TeachingMethodology,
		ExampleTypes:         data.ExampleTypes,
		KeyCharacteristics:   string(data.UniqueTraits),
		TeacherGender:        normalizeGender(data.TeacherGender),
		VoiceCharacteristics: data.VoiceCharacteristics,
	}, nil
}

type rawTone struct {
	Level       json.RawMessage `json:"level"`
	Description string          `json:"description"`
}

// normalizeTone 统一 {level, description} 对象与扁平字符串两种形态
func normalizeTone(raw json.RawMessage) string {
	if len(raw) > 0 {
		var obj rawTone
		if json.Unmarshal(raw, &obj) == nil && obj.Description != "" {
			level := strings.Trim(string(obj.Level), `" `)
			if level != "" && level != "null" {
				return fmt.Sprintf("%s (Level: %s)", obj.Description, level)
			}
			return obj.Description
		}
		var flat string
		if json.Unmarshal(raw, &flat) == nil && strings.TrimSpace(flat) != "" {
			return flat
		}
	}
	return "Neutral"
}

// normalizeGender 只有明确出现 female 才判为女性，缺省保持 Male
func normalizeGender(value string) model.TeacherGender {
	if strings.Contains(strings.ToLower(value), "female") {
		return model.GenderFemale
	}
	return model.GenderMale
}
