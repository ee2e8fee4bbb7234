package app

import (
	"teach_clone_backend/docs"
	"teach_clone_backend/internal/config"
	"teach_clone_backend/internal/middleware"
	"teach_clone_backend/internal/model"
	"teach_clone_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 教师：视频管线与人格
		teacher := authGroup.Group("/")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/videos", c.video.Upload)
			teacher.GET("/videos", c.video.List)
			teacher.GET("/videos/:id", c.video.Get)
			teacher.POST("/videos/:id/analyze", c.video.Analyze)
			teacher.GET("/videos/:id/analysis", c.video.GetAnalysis)
			teacher.POST("/videos/:id/personality", c.personality.Generate)
			teacher.GET("/personality", c.personality.GetMine)
		}

		// 学生：人格目录与对话
		student := authGroup.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/personalities", c.chat.ListPersonalities)
			student.POST("/personalities/:id/conversations", c.chat.StartConversation)
			student.GET("/conversations", c.chat.ListConversations)
			student.GET("/conversations/:id/messages", c.chat.GetMessages)
			student.POST("/conversations/:id/messages", c.chat.PostMessage)
		}

		// 管理员：审批与看板
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/stats", c.admin.Stats)
			admin.GET("/teachers", c.admin.ListTeachers)
			admin.PATCH("/teachers/:id/status", c.admin.UpdateTeacherStatus)
			admin.GET("/personalities", c.admin.ListPersonalities)
			admin.GET("/personalities/pending", c.admin.ListPendingPersonalities)
			admin.PATCH("/personalities/:id/review", c.admin.ReviewPersonality)
			admin.PATCH("/personalities/:id/active", c.admin.TogglePersonalityActive)
			admin.POST("/personalities/test", c.admin.TestPersonalityChat)
		}
	}
}
