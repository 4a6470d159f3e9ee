package controller

import (
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ImportController struct {
	AIImportService *service.AIImportService
}

func NewImportController(aiImportService *service.AIImportService) *ImportController {
	return &ImportController{AIImportService: aiImportService}
}

// ExtractRequest 原始题目文本
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// Extract godoc
// @Summary AI抽取题目（管理员）
// @Description 从粘贴的原始文本中抽取结构化候选题目，仅供审阅，不直接入库
// @Tags 导入
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ExtractRequest true "原始文本"
// @Success 200 {object} util.Response{data=[]service.ExtractedQuestion}
// @Failure 500 {object} util.Response "LLM调用失败"
// @Router /api/admin/import/extract [post]
func (c *ImportController) Extract(ctx *gin.Context) {
	var req ExtractRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, err := c.AIImportService.Extract(ctx.Request.Context(), req.Text)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
