package model

import "time"

type VideoStatus string

const (
	VideoUploaded   VideoStatus = "uploaded"
	VideoProcessing VideoStatus = "processing"
	VideoAnalyzed   VideoStatus = "analyzed"
	VideoFailed     VideoStatus = "failed"
)

// swagger:model Video
type Video struct {
	BaseModel
	TeacherID  uint        `gorm:"index;not null" json:"teacherId"`
	Title      string      `gorm:"size:255;not null" json:"title"`
	Subject    string      `gorm:"size:100" json:"subject"`
	GradeLevel string      `gorm:"size:50" json:"gradeLevel"`
	// ObjectKey 指向存储提供者中的视频对象
	ObjectKey    string      `gorm:"size:255;not null" json:"-"`
	FileURL      string      `gorm:"size:512" json:"fileUrl"`
	FileSize     int64       `json:"fileSize"`
	MimeType     string      `gorm:"size:100" json:"mimeType"`
	Duration     float64     `json:"duration,omitempty"`
	UploadStatus VideoStatus `gorm:"type:enum('uploaded','processing','analyzed','failed');default:'uploaded'" json:"uploadStatus"`
	UploadedAt   time.Time   `json:"uploadedAt"`
}

func (Video) TableName() string {
	return "videos"
}
