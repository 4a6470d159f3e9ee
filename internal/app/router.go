package app

import (
	"exam_prep_backend/docs"
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/middleware"
	"exam_prep_backend/internal/model"

	"exam_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	a.registerStudentRoutes(router, c)

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 榜单允许游客查看，登录用户可用于高亮自己
		public.GET("/leaderboard/tests/:id", middleware.TryAuthMiddleware(a.Config), c.leaderboard.ForTest)
	}
}

func (a *App) registerStudentRoutes(router *gin.Engine, c *controllers) {
	rg := router.Group("/api")
	rg.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(a.services.user.UserRepo))
	{
		rg.GET("/me", c.auth.Me)
		rg.PUT("/users/profile", c.user.UpdateProfile)
		rg.GET("/batches", c.user.ListBatches)

		// 试卷浏览
		rg.GET("/tests", c.test.ListForStudent)
		rg.GET("/tests/:id", c.test.GetForStudent)

		// 作答流程
		rg.POST("/attempts/start", c.attempt.Start)
		rg.GET("/attempts", c.attempt.ListMine)
		rg.GET("/attempts/:id", c.attempt.Get)
		rg.PUT("/attempts/:id/answers", c.attempt.SaveAnswer)
		rg.POST("/attempts/:id/submit", c.attempt.Submit)

		// 排行榜
		rg.GET("/leaderboard/global", c.leaderboard.Global)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config),
		middleware.ActivityMiddleware(a.services.user.UserRepo),
		middleware.RoleMiddleware(model.Admin))
	{
		// 用户与批次管理
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id/batch", c.user.AssignBatch)
		admin.PUT("/users/:id/disabled", c.user.SetDisabled)
		admin.POST("/batches", c.user.CreateBatch)
		admin.PUT("/batches/:id", c.user.UpdateBatch)
		admin.DELETE("/batches/:id", c.user.DeleteBatch)

		// 题库管理
		admin.POST("/questions", c.question.Create)
		admin.GET("/questions", c.question.List)
		admin.GET("/questions/:id", c.question.Get)
		admin.PUT("/questions/:id", c.question.Update)
		admin.DELETE("/questions/:id", c.question.Delete)
		admin.POST("/questions/image", c.question.UploadImage)

		// 试卷管理
		admin.POST("/tests", c.test.Create)
		admin.GET("/tests", c.test.ListAdmin)
		admin.GET("/tests/:id", c.test.Get)
		admin.PUT("/tests/:id", c.test.Update)
		admin.DELETE("/tests/:id", c.test.Delete)
		admin.POST("/tests/:id/publish", c.test.Publish)
		admin.GET("/tests/:id/stats", c.leaderboard.StatsForTest)

		// AI 导入
		admin.POST("/import/extract", c.aiImport.Extract)
	}
}
