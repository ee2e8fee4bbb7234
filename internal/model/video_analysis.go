package model

import "time"

type TeacherGender string

const (
	GenderMale   TeacherGender = "Male"
	GenderFemale TeacherGender = "Female"
)

// VideoAnalysis 视频风格分析结果。一个视频至多保留一条分析（latest wins）。
// swagger:model VideoAnalysis
type VideoAnalysis struct {
	BaseModel
	VideoID              uint          `gorm:"uniqueIndex;not null" json:"videoId"`
	TeachingStyle        string        `gorm:"type:text" json:"teachingStyle"`
	CommonPhrases        string        `gorm:"type:text" json:"commonPhrases"`
	ToneDescription      string        `gorm:"size:255" json:"toneDescription"`
	LanguageMix          string        `gorm:"size:100" json:"languageMix"`
	Pacing               string        `gorm:"size:50" json:"pacing"`
	TeachingMethodology  string        `gorm:"type:text" json:"teachingMethodology"`
	ExampleTypes         string        `gorm:"type:text" json:"exampleTypes"`
	KeyCharacteristics   string        `gorm:"type:text" json:"keyCharacteristics"`
	TeacherGender        TeacherGender `gorm:"type:enum('Male','Female');default:'Male'" json:"teacherGender"`
	VoiceCharacteristics string        `gorm:"size:255" json:"voiceCharacteristics"`
	AnalyzedAt           time.Time     `json:"analyzedAt"`
}

func (VideoAnalysis) TableName() string {
	return "video_analyses"
}
