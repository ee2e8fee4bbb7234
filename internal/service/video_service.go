package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/util"
	"teach_clone_backend/pkg/logger"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrFileTooLarge   = errors.New("file exceeds upload size limit")
	ErrUnsupportedExt = errors.New("unsupported video format")
)

// UploadRequest 上传元数据，文件本体已由控制器落到临时路径
type UploadRequest struct {
	TeacherID  uint
	Title      string
	Subject    string
	GradeLevel string
	Filename   string
	LocalPath  string
	Size       int64
	MimeType   string
}

// VideoService 视频上传管线：校验 -> 探测 -> 存储 -> 建档
type VideoService struct {
	Videos  VideoStore
	Storage *StorageService
}

func NewVideoService(videos VideoStore, storage *StorageService) *VideoService {
	return &VideoService{Videos: videos, Storage: storage}
}

func (s *VideoService) Upload(ctx context.Context, req *UploadRequest) (*model.Video, error) {
	if req.Size > util.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !extAllowed(ext) {
		return nil, ErrUnsupportedExt
	}

	mimeType := req.MimeType
	if mimeType == "" || mimeType == util.MimeOctetStream {
		mimeType = util.MimeTypeForExtension(ext)
	}

	// 时长探测失败不阻断上传
	var duration float64
	if info, err := util.GetVideoInfo(req.LocalPath); err == nil {
		duration = info.Duration
	} else {
		logger.Log.Warn("video probe failed", zap.String("file", req.Filename), zap.Error(err))
	}

	objectKey := fmt.Sprintf("videos/%d/%s%s", req.TeacherID, uuid.New().String(), ext)
	fileURL, err := s.Storage.UploadFile(ctx, objectKey, req.LocalPath, mimeType)
	if err != nil {
		return nil, err
	}

	video := &model.Video{
		TeacherID:    req.TeacherID,
		Title:        req.Title,
		Subject:      req.Subject,
		GradeLevel:   req.GradeLevel,
		ObjectKey:    objectKey,
		FileURL:      fileURL,
		FileSize:     req.Size,
		MimeType:     mimeType,
		Duration:     duration,
		UploadStatus: model.VideoUploaded,
		UploadedAt:   time.Now(),
	}
	if err := s.Videos.Create(video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) ListByTeacher(teacherID uint) ([]model.Video, error) {
	return s.Videos.FindByTeacherID(teacherID)
}

func (s *VideoService) GetByID(id uint) (*model.Video, error) {
	video, err := s.Videos.FindByID(id)
	if err != nil {
		return nil, util.ErrVideoNotFound
	}
	return video, nil
}

func extAllowed(ext string) bool {
	for _, allowed := range util.AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
