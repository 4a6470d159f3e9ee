package controller

import (
	"strconv"

	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// UpdateProfileRequest 个人资料更新请求
type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req.Name, req.Avatar)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	user.Password = ""
	util.Success(ctx, user)
}

// ListUsers godoc
// @Summary 用户列表（管理员）
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Param   role query string false "按角色过滤"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	role := ctx.Query("role")

	users, total, err := c.UserService.ListUsers(page, limit, role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	util.Success(ctx, gin.H{"users": users, "total": total})
}

// AssignBatchRequest 批次分配请求，batchId 为 null 表示移出批次
type AssignBatchRequest struct {
	BatchID *string `json:"batchId"`
}

// AssignBatch godoc
// @Summary 分配用户批次（管理员）
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body AssignBatchRequest true "批次"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "用户或批次不存在"
// @Router /api/admin/users/{id}/batch [put]
func (c *UserController) AssignBatch(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req AssignBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.AssignBatch(uint(userID), req.BatchID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetDisabledRequest 启用/禁用账号
type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// SetDisabled godoc
// @Summary 启用或禁用账号（管理员）
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body SetDisabledRequest true "状态"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetDisabled(uint(userID), req.Disabled); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// BatchRequest 批次创建/更新请求
type BatchRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateBatch godoc
// @Summary 创建批次（管理员）
// @Tags 批次
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body BatchRequest true "批次信息"
// @Success 201 {object} util.Response{data=model.Batch}
// @Router /api/admin/batches [post]
func (c *UserController) CreateBatch(ctx *gin.Context) {
	var req BatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	batch := &model.Batch{Name: req.Name, Description: req.Description}
	if err := c.UserService.CreateBatch(batch); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, batch)
}

// UpdateBatch godoc
// @Summary 更新批次（管理员）
// @Tags 批次
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "批次ID"
// @Param   body body BatchRequest true "批次信息"
// @Success 200 {object} util.Response{data=model.Batch}
// @Router /api/admin/batches/{id} [put]
func (c *UserController) UpdateBatch(ctx *gin.Context) {
	var req BatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	batch, err := c.UserService.UpdateBatch(ctx.Param("id"), req.Name, req.Description)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, batch)
}

// DeleteBatch godoc
// @Summary 删除批次（管理员）
// @Tags 批次
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "批次ID"
// @Success 200 {object} util.Response
// @Router /api/admin/batches/{id} [delete]
func (c *UserController) DeleteBatch(ctx *gin.Context) {
	if err := c.UserService.DeleteBatch(ctx.Param("id")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListBatches godoc
// @Summary 批次列表
// @Tags 批次
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Batch}
// @Router /api/batches [get]
func (c *UserController) ListBatches(ctx *gin.Context) {
	batches, err := c.UserService.ListBatches()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, batches)
}
