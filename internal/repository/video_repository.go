package repository

import (
	"teach_clone_backend/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	DB *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{DB: db}
}

func (r *VideoRepository) Create(video *model.Video) error {
	return r.DB.Create(video).Error
}

func (r *VideoRepository) FindByID(id uint) (*model.Video, error) {
	var video model.Video
	err := r.DB.First(&video, id).Error
	return &video, err
}

func (r *VideoRepository) FindByTeacherID(teacherID uint) ([]model.Video, error) {
	var videos []model.Video
	err := r.DB.Where("teacher_id = ?", teacherID).Order("id DESC").Find(&videos).Error
	return videos, err
}

// UpdateStatus 行级更新，避免整表读改写
func (r *VideoRepository) UpdateStatus(id uint, status model.VideoStatus) error {
	return r.DB.Model(&model.Video{}).Where("id = ?", id).Update("upload_status", status).Error
}
