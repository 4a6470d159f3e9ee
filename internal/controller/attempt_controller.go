package controller

import (
	"strconv"

	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// StartRequest 开始作答请求
type StartRequest struct {
	TestID   string `json:"testId" binding:"required"`
	ForceNew bool   `json:"forceNew"`
}

// Start godoc
// @Summary 开始或恢复作答
// @Description 已有未提交记录且 forceNew=false 时恢复原作答；forceNew=true 时放弃旧记录重新开始
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body StartRequest true "试卷与重开标志"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 400 {object} util.Response "试卷未发布或没有题目"
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/attempts/start [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.AttemptService.Start(claims.UserID, req.TestID, req.ForceNew)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SaveAnswerRequest 保存单题作答，整体替换此前的选择，空数组表示清除
type SaveAnswerRequest struct {
	QuestionID      string `json:"questionId" binding:"required"`
	SelectedOptions []int  `json:"selectedOptions"`
}

// SaveAnswer godoc
// @Summary 保存单题作答
// @Description 过期或已交卷的作答拒绝写入
// @Tags 作答
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "作答ID"
// @Param   body body SaveAnswerRequest true "题目与选择"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "作答不存在或不属于当前用户"
// @Failure 409 {object} util.Response "作答已过期或已交卷"
// @Router /api/attempts/{id}/answers [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.AttemptService.SaveAnswer(claims.UserID, ctx.Param("id"), req.QuestionID, req.SelectedOptions)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Submit godoc
// @Summary 交卷
// @Description 超时不阻止交卷，按过期前保存的答案评分；重复交卷返回已落库结果
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "作答ID"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 404 {object} util.Response "作答不存在"
// @Failure 409 {object} util.Response "作答已放弃"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.AttemptService.Submit(claims.UserID, ctx.Param("id"), service.SubmitTriggerStudent)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Get godoc
// @Summary 作答详情（恢复/回看）
// @Description 进行中返回剩余秒数与已保存答案；已交卷返回逐题判定与解析
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "作答ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "作答不存在"
// @Router /api/attempts/{id} [get]
func (c *AttemptController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, result, err := c.AttemptService.GetAttempt(claims.UserID, ctx.Param("id"), claims.Role == model.Admin)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	if result != nil {
		util.Success(ctx, result)
		return
	}
	util.Success(ctx, view)
}

// ListMine godoc
// @Summary 我的作答记录
// @Tags 作答
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=object}
// @Router /api/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.AttemptService.ListMine(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attempts": attempts, "total": total})
}
