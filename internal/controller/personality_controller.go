package controller

import (
	"errors"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/service"
	"teach_clone_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PersonalityController struct {
	PersonalityService *service.PersonalityService
	VideoService       *service.VideoService
}

func NewPersonalityController(personalityService *service.PersonalityService, videoService *service.VideoService) *PersonalityController {
	return &PersonalityController{PersonalityService: personalityService, VideoService: videoService}
}

// Generate godoc
// @Summary 从视频分析结果生成 AI 人格
// @Description 确定性模板合成系统提示词；重新生成会覆盖旧人格并重置为待审核
// @Tags 人格
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "视频ID"
// @Success 201 {object} util.Response{data=model.AIPersonality} "生成成功"
// @Failure 403 {object} util.Response "无权访问他人视频"
// @Failure 404 {object} util.Response "视频不存在"
// @Failure 422 {object} util.Response "视频尚未分析"
// @Router /api/videos/{id}/personality [post]
func (c *PersonalityController) Generate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "无效的视频ID")
		return
	}

	video, err := c.VideoService.GetByID(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	if video.TeacherID != claims.UserID && claims.Role != model.Admin {
		util.Forbidden(ctx)
		return
	}

	personality, err := c.PersonalityService.Generate(video.ID)
	if err != nil {
		if errors.Is(err, util.ErrAnalysisRequired) {
			util.Error(ctx, 422, "请先完成视频分析")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, personality)
}

// GetMine godoc
// @Summary 查看自己的 AI 人格
// @Description 教师查看人格当前状态与管理员反馈
// @Tags 人格
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AIPersonality} "Success"
// @Failure 404 {object} util.Response "尚未生成人格"
// @Router /api/personality [get]
func (c *PersonalityController) GetMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	personality, err := c.PersonalityService.GetByTeacher(claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, personality)
}
