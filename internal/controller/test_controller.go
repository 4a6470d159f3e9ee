package controller

import (
	"strconv"

	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// Create godoc
// @Summary 创建试卷（管理员）
// @Tags 试卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.TestInput true "试卷内容"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response "校验失败"
// @Router /api/admin/tests [post]
func (c *TestController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.TestInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t, err := c.TestService.Create(claims.UserID, &input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, t)
}

// Get godoc
// @Summary 试卷详情（管理员）
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/admin/tests/{id} [get]
func (c *TestController) Get(ctx *gin.Context) {
	t, err := c.TestService.Get(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// Update godoc
// @Summary 更新试卷（管理员）
// @Tags 试卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Param   body body service.TestInput true "试卷内容"
// @Success 200 {object} util.Response{data=model.Test}
// @Router /api/admin/tests/{id} [put]
func (c *TestController) Update(ctx *gin.Context) {
	var input service.TestInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	t, err := c.TestService.Update(ctx.Param("id"), &input)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// Delete godoc
// @Summary 删除试卷（管理员）
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id} [delete]
func (c *TestController) Delete(ctx *gin.Context) {
	if err := c.TestService.Delete(ctx.Param("id")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Publish godoc
// @Summary 发布试卷（管理员）
// @Description 空卷不可发布，重复发布幂等
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response "试卷没有题目"
// @Router /api/admin/tests/{id}/publish [post]
func (c *TestController) Publish(ctx *gin.Context) {
	t, err := c.TestService.Publish(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// ListAdmin godoc
// @Summary 试卷列表（管理员）
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Param   status query string false "按状态过滤 draft/published"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/tests [get]
func (c *TestController) ListAdmin(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	tests, total, err := c.TestService.ListAdmin(page, limit, ctx.Query("status"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"tests": tests, "total": total})
}

// ListForStudent godoc
// @Summary 可参加的试卷列表（学生）
// @Description 只返回已发布且对当前学生批次可见的试卷
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.TestSummary}
// @Router /api/tests [get]
func (c *TestController) ListForStudent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	tests, err := c.TestService.ListForStudent(claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

// GetForStudent godoc
// @Summary 试卷详情（学生）
// @Description 返回题目但不包含正确答案与解析
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "试卷未发布或不可见"
// @Router /api/tests/{id} [get]
func (c *TestController) GetForStudent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	t, questions, err := c.TestService.GetForStudent(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"test": t, "questions": questions})
}
