package controller

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/service"
	"teach_clone_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VideoController struct {
	VideoService    *service.VideoService
	AnalysisService *service.AnalysisService
}

func NewVideoController(videoService *service.VideoService, analysisService *service.AnalysisService) *VideoController {
	return &VideoController{VideoService: videoService, AnalysisService: analysisService}
}

// Upload godoc
// @Summary 上传教学视频
// @Description 教师上传视频文件及元数据（标题、学科、年级）
// @Tags 视频
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "视频文件"
// @Param   title formData string true "标题"
// @Param   subject formData string false "学科"
// @Param   gradeLevel formData string false "年级"
// @Success 201 {object} util.Response{data=model.Video} "上传成功"
// @Failure 400 {object} util.Response "文件缺失、超限或格式不支持"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/videos [post]
func (c *VideoController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少视频文件")
		return
	}

	title := ctx.PostForm("title")
	if title == "" {
		util.BadRequest(ctx, "缺少标题")
		return
	}

	// 先落临时文件，供 ffprobe 和存储提供者读取
	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		util.LogInternalError(ctx, err)
		return
	}
	tmp.Close()

	video, err := c.VideoService.Upload(ctx.Request.Context(), &service.UploadRequest{
		TeacherID:  claims.UserID,
		Title:      title,
		Subject:    ctx.PostForm("subject"),
		GradeLevel: ctx.PostForm("gradeLevel"),
		Filename:   fileHeader.Filename,
		LocalPath:  tmpPath,
		Size:       fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			util.BadRequest(ctx, "文件大小超出限制")
		case errors.Is(err, service.ErrUnsupportedExt):
			util.BadRequest(ctx, "不支持的视频格式")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, video)
}

// List godoc
// @Summary 我的视频列表
// @Description 当前教师上传的全部视频
// @Tags 视频
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Video} "Success"
// @Router /api/videos [get]
func (c *VideoController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	videos, err := c.VideoService.ListByTeacher(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, videos)
}

// Get godoc
// @Summary 视频详情
// @Tags 视频
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "视频ID"
// @Success 200 {object} util.Response{data=model.Video} "Success"
// @Failure 403 {object} util.Response "无权访问他人视频"
// @Failure 404 {object} util.Response "视频不存在"
// @Router /api/videos/{id} [get]
func (c *VideoController) Get(ctx *gin.Context) {
	video, ok := c.ownedVideo(ctx)
	if !ok {
		return
	}
	util.Success(ctx, video)
}

// Analyze godoc
// @Summary 触发视频风格分析
// @Description 执行分析流水线：媒体直传 -> 元数据推断 -> 内置档案
// @Tags 视频
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "视频ID"
// @Success 200 {object} util.Response{data=service.AnalysisResult} "分析完成"
// @Failure 403 {object} util.Response "无权访问他人视频"
// @Failure 404 {object} util.Response "视频不存在"
// @Failure 422 {object} util.Response "视频数据缺失或分析结果不可用"
// @Router /api/videos/{id}/analyze [post]
func (c *VideoController) Analyze(ctx *gin.Context) {
	video, ok := c.ownedVideo(ctx)
	if !ok {
		return
	}

	result, err := c.AnalysisService.Analyze(ctx.Request.Context(), video.ID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrBlobMissing):
			util.Error(ctx, 422, "视频文件数据缺失或损坏")
		case errors.Is(err, util.ErrMalformedAnalysis):
			util.Error(ctx, 422, "分析结果不可用，请重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// GetAnalysis godoc
// @Summary 查看视频的分析结果
// @Tags 视频
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "视频ID"
// @Success 200 {object} util.Response{data=model.VideoAnalysis} "Success"
// @Failure 404 {object} util.Response "视频或分析不存在"
// @Router /api/videos/{id}/analysis [get]
func (c *VideoController) GetAnalysis(ctx *gin.Context) {
	video, ok := c.ownedVideo(ctx)
	if !ok {
		return
	}

	analysis, err := c.AnalysisService.Analyses.FindByVideoID(video.ID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, analysis)
}

// ownedVideo 解析路径参数并校验属主（管理员放行）
func (c *VideoController) ownedVideo(ctx *gin.Context) (*model.Video, bool) {
	claims := util.GetUserFromContext(ctx)

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "无效的视频ID")
		return nil, false
	}

	video, err := c.VideoService.GetByID(id)
	if err != nil {
		util.NotFound(ctx)
		return nil, false
	}

	if video.TeacherID != claims.UserID && claims.Role != model.Admin {
		util.Forbidden(ctx)
		return nil, false
	}
	return video, true
}
