package controller

import (
	"errors"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/internal/service"
	"teach_clone_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// ListPersonalities godoc
// @Summary 可对话的 AI 教师列表
// @Description 仅返回已通过审核且启用的人格
// @Tags 对话
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.PersonalityWithTeacher} "Success"
// @Router /api/personalities [get]
func (c *ChatController) ListPersonalities(ctx *gin.Context) {
	rows, err := c.ChatService.ListApprovedPersonalities()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// StartConversation godoc
// @Summary 开启（或复用）与某个 AI 教师的会话
// @Description 同一学生与同一人格只存在一个会话，重复调用幂等返回
// @Tags 对话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "人格ID"
// @Success 200 {object} util.Response{data=model.Conversation} "Success"
// @Failure 404 {object} util.Response "人格不存在"
// @Failure 422 {object} util.Response "人格未通过审核或已停用"
// @Router /api/personalities/{id}/conversations [post]
func (c *ChatController) StartConversation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "无效的人格ID")
		return
	}

	conv, err := c.ChatService.GetOrCreateConversation(claims.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPersonalityNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotApproved):
			util.Error(ctx, 422, "该 AI 教师当前不可用")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, conv)
}

// ListConversations godoc
// @Summary 我的会话列表
// @Tags 对话
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Conversation} "Success"
// @Router /api/conversations [get]
func (c *ChatController) ListConversations(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	convs, err := c.ChatService.ListConversations(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, convs)
}

// GetMessages godoc
// @Summary 会话消息记录
// @Description 按时间升序返回完整聊天记录
// @Tags 对话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Success 200 {object} util.Response{data=[]model.Message} "Success"
// @Failure 403 {object} util.Response "无权访问他人会话"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/conversations/{id}/messages [get]
func (c *ChatController) GetMessages(ctx *gin.Context) {
	conv, ok := c.ownedConversation(ctx)
	if !ok {
		return
	}

	msgs, err := c.ChatService.GetMessages(conv.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, msgs)
}

// PostMessageRequest 学生发送的消息
type PostMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// PostMessage godoc
// @Summary 发送消息并获取 AI 回复
// @Description 学生消息先落库；AI 回复失败时学生消息保留，不产生 AI 回合
// @Tags 对话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "会话ID"
// @Param   body body PostMessageRequest true "消息内容"
// @Success 200 {object} util.Response{data=service.TurnResult} "Success"
// @Failure 403 {object} util.Response "无权访问他人会话"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 502 {object} util.Response "AI 服务暂不可用"
// @Router /api/conversations/{id}/messages [post]
func (c *ChatController) PostMessage(ctx *gin.Context) {
	var req PostMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	conv, ok := c.ownedConversation(ctx)
	if !ok {
		return
	}

	result, err := c.ChatService.PostMessage(ctx.Request.Context(), conv.ID, req.Message)
	if err != nil {
		if errors.Is(err, util.ErrGatewayFailure) {
			util.Error(ctx, 502, "AI 服务暂不可用，你的消息已保存，请稍后重试")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

func (c *ChatController) ownedConversation(ctx *gin.Context) (*model.Conversation, bool) {
	claims := util.GetUserFromContext(ctx)

	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "无效的会话ID")
		return nil, false
	}

	found, err := c.ChatService.GetConversation(id)
	if err != nil {
		util.NotFound(ctx)
		return nil, false
	}

	if found.StudentID != claims.UserID {
		util.Forbidden(ctx)
		return nil, false
	}
	return found, true
}
