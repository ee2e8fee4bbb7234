package controller

import (
	"errors"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/service"
	"teach_clone_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// Stats godoc
// @Summary 运营看板统计
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.DashboardStats} "Success"
// @Router /api/admin/stats [get]
func (c *AdminController) Stats(ctx *gin.Context) {
	stats, err := c.AdminService.Stats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// ListTeachers godoc
// @Summary 教师账号列表
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User} "Success"
// @Router /api/admin/teachers [get]
func (c *AdminController) ListTeachers(ctx *gin.Context) {
	teachers, err := c.AdminService.ListTeachers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, teachers)
}

// TeacherStatusRequest 教师账号审核请求
type TeacherStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// UpdateTeacherStatus godoc
// @Summary 审核教师账号
// @Description 通过或驳回教师注册申请；已驳回账号可复议通过
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body TeacherStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 400 {object} util.Response "非法状态"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/teachers/{id}/status [patch]
func (c *AdminController) UpdateTeacherStatus(ctx *gin.Context) {
	var req TeacherStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	user, err := c.AdminService.UpdateTeacherStatus(id, model.AccountStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.BadRequest(ctx, "目标用户不是教师")
		case errors.Is(err, util.ErrInvalidTransition):
			util.BadRequest(ctx, "非法的状态迁移")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, user)
}

// ListPersonalities godoc
// @Summary 全部 AI 人格
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.PersonalityWithTeacher} "Success"
// @Router /api/admin/personalities [get]
func (c *AdminController) ListPersonalities(ctx *gin.Context) {
	rows, err := c.AdminService.ListPersonalities()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// ListPendingPersonalities godoc
// @Summary 待审核 AI 人格
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.PersonalityWithTeacher} "Success"
// @Router /api/admin/personalities/pending [get]
func (c *AdminController) ListPendingPersonalities(ctx *gin.Context) {
	rows, err := c.AdminService.ListPendingPersonalities()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// ReviewRequest 人格审批请求
type ReviewRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	// 驳回必填；通过时忽略
	Feedback string `json:"feedback"`
	// 管理员修订后的提示词，非空时覆盖生成稿
	EditedPrompt string `json:"editedPrompt"`
}

// ReviewPersonality godoc
// @Summary 审批 AI 人格
// @Description 通过（激活并清空反馈）或驳回（必须附反馈）；空反馈驳回视为取消
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "人格ID"
// @Param   body body ReviewRequest true "审批决定"
// @Success 200 {object} util.Response{data=model.AIPersonality} "Success"
// @Failure 400 {object} util.Response "驳回缺少反馈"
// @Failure 404 {object} util.Response "人格不存在"
// @Router /api/admin/personalities/{id}/review [patch]
func (c *AdminController) ReviewPersonality(ctx *gin.Context) {
	var req ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	personality, err := c.AdminService.ReviewPersonality(id, model.PersonalityStatus(req.Status), req.Feedback, req.EditedPrompt)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrFeedbackRequired):
			util.BadRequest(ctx, "驳回必须填写反馈意见")
		case errors.Is(err, util.ErrPersonalityNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidTransition):
			util.BadRequest(ctx, "非法的审批状态")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, personality)
}

// ToggleActiveRequest 人格启停请求
type ToggleActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// TogglePersonalityActive godoc
// @Summary 启用/停用 AI 人格
// @Description 仅已通过审核的人格可启停；停用后学生侧立即不可见
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "人格ID"
// @Param   body body ToggleActiveRequest true "目标启用状态"
// @Success 200 {object} util.Response{data=model.AIPersonality} "Success"
// @Failure 400 {object} util.Response "人格未通过审核"
// @Failure 404 {object} util.Response "人格不存在"
// @Router /api/admin/personalities/{id}/active [patch]
func (c *AdminController) TogglePersonalityActive(ctx *gin.Context) {
	var req ToggleActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	personality, err := c.AdminService.TogglePersonalityActive(id, *req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNotApproved):
			util.BadRequest(ctx, "人格未通过审核，无法启停")
		case errors.Is(err, util.ErrPersonalityNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, personality)
}

// TestChatRequest 审批前试聊请求
type TestChatRequest struct {
	SystemPrompt string `json:"systemPrompt" binding:"required"`
	Message      string `json:"message" binding:"required"`
}

// TestPersonalityChat godoc
// @Summary 审批前试聊
// @Description 单轮对话验证提示词效果，不落库、不要求人格已通过
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body TestChatRequest true "提示词与测试消息"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 502 {object} util.Response "推理网关不可用"
// @Router /api/admin/personalities/test [post]
func (c *AdminController) TestPersonalityChat(ctx *gin.Context) {
	var req TestChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.AdminService.TestPersonalityChat(ctx.Request.Context(), req.SystemPrompt, req.Message)
	if err != nil {
		util.Error(ctx, 502, "AI 服务暂不可用，请稍后重试")
		return
	}
	util.Success(ctx, gin.H{"reply": reply})
}
