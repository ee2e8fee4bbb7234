package service

import (
	"strings"
	"teach_clone_backend/internal/model"
)

// VoiceProfile 语音合成参数，随每条 AI 消息下发
type VoiceProfile struct {
	Pitch     float64             `json:"pitch"`
	Rate      float64             `json:"rate"`
	Lang      string              `json:"lang"`
	Gender    model.TeacherGender `json:"gender"`
	VoiceName string              `json:"voiceName"`
}

const (
	voiceLangDefault = "en-US"
	voiceNameMale    = "en-US-Neural2-D"
	voiceNameFemale  = "en-US-Neural2-F"
)

// 分析缺失时按名字猜测性别用的线索表
var femaleNameHints = []string{
	"fatima", "ayesha", "sarah", "maria", "emily", "jessica",
	"linda", "jennifer", "khadija", "maryam", "zainab", "aisha",
}

// DetectTeacherGender 按优先级判定：分析字段 > 音色描述关键词 > 名字线索 > Male
func DetectTeacherGender(analysis *model.VideoAnalysis, teacherName string) model.TeacherGender {
	if analysis != nil {
		switch strings.ToLower(string(analysis.TeacherGender)) {
		case "female":
			return model.GenderFemale
		case "male":
			return model.GenderMale
		}

		// "female" 包含 "male"，必须先查 female
		vc := strings.ToLower(analysis.VoiceCharacteristics)
		if strings.Contains(vc, "female") || strings.Contains(vc, "woman") {
			return model.GenderFemale
		}
		if strings.Contains(vc, "male") || strings.Contains(vc, "man") {
			return model.GenderMale
		}
	}

	name := strings.ToLower(teacherName)
	for _, hint := range femaleNameHints {
		if strings.Contains(name, hint) {
			return model.GenderFemale
		}
	}

	return model.GenderMale
}

// DeriveVoiceProfile 纯函数：相同输入恒产生相同参数。
// 分析缺失时给中性默认值（pitch 0 / rate 1.0）。
func DeriveVoiceProfile(analysis *model.VideoAnalysis, teacherName string) VoiceProfile {
	pitch := 0.0
	rate := 1.0

	if analysis != nil {
		tone := strings.ToLower(analysis.ToneDescription)
		if strings.Contains(tone, "energetic") || strings.Contains(tone, "enthusiastic") {
			pitch = 2.0
		} else if strings.Contains(tone, "calm") || strings.Contains(tone, "serious") {
			pitch = -2.0
		}

		pacing := strings.ToLower(analysis.Pacing)
		if strings.Contains(pacing, "fast") {
			rate = 1.15
		} else if strings.Contains(pacing, "slow") {
			rate = 0.90
		}
	}

	gender := DetectTeacherGender(analysis, teacherName)
	voiceName := voiceNameMale
	if gender == model.GenderFemale {
		voiceName = voiceNameFemale
	}

	return VoiceProfile{
		Pitch:     pitch,
		Rate:      rate,
		Lang:      voiceLangDefault,
		Gender:    gender,
		VoiceName: voiceName,
	}
}
