package repository

import (
	"errors"
	"teach_clone_backend/internal/model"

	"gorm.io/gorm"
)

type AnalysisRepository struct {
	DB *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{DB: db}
}

func (r *AnalysisRepository) FindByVideoID(videoID uint) (*model.VideoAnalysis, error) {
	var analysis model.VideoAnalysis
	err := r.DB.Where("video_id = ?", videoID).First(&analysis).Error
	return &analysis, err
}

// LatestByTeacherID 该教师所有视频中最新的分析记录
func (r *AnalysisRepository) LatestByTeacherID(teacherID uint) (*model.VideoAnalysis, error) {
	var analysis model.VideoAnalysis
	err := r.DB.
		Joins("JOIN videos ON videos.id = video_analyses.video_id").
		Where("videos.teacher_id = ?", teacherID).
		Order("video_analyses.analyzed_at DESC").
		First(&analysis).Error
	return &analysis, err
}

// Upsert 一个视频至多一条分析，重分析原地覆盖
func (r *AnalysisRepository) Upsert(analysis *model.VideoAnalysis) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.VideoAnalysis
		err := tx.Where("video_id = ?", analysis.VideoID).First(&existing).Error
		if err == nil {
			analysis.ID = existing.ID
			analysis.CreatedAt = existing.CreatedAt
			return tx.Save(analysis).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(analysis).Error
	})
}
