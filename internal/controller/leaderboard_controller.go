package controller

import (
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// ForTest godoc
// @Summary 试卷排行榜
// @Description 只统计已交卷的作答，分数降序、用时升序，并列密集名次；游客可看
// @Tags 排行榜
// @Produce  json
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/leaderboard/tests/{id} [get]
func (c *LeaderboardController) ForTest(ctx *gin.Context) {
	entries, err := c.LeaderboardService.ForTest(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// Global godoc
// @Summary 全站榜单
// @Description 按用户聚合全部已提交作答：累计得分、场次、正确率与段位
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.GlobalEntry}
// @Router /api/leaderboard/global [get]
func (c *LeaderboardController) Global(ctx *gin.Context) {
	entries, err := c.LeaderboardService.Global()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// StatsForTest godoc
// @Summary 试卷统计（管理员）
// @Tags 排行榜
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response{data=service.TestStats}
// @Router /api/admin/tests/{id}/stats [get]
func (c *LeaderboardController) StatsForTest(ctx *gin.Context) {
	stats, err := c.LeaderboardService.StatsForTest(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
