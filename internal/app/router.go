package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录对游客可见
		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.catalog.ListCourses)
		public.GET("/courses/:courseId/outline", middleware.TryAuthMiddleware(cfg), c.catalog.GetCourseOutline)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 选课与进度
		authGroup.POST("/courses/:courseId/enroll", c.enrollment.Enroll)
		authGroup.GET("/courses/:courseId/enrollment", c.enrollment.GetMyEnrollment)
		authGroup.GET("/enrollments", c.enrollment.ListMyEnrollments)
		authGroup.POST("/lessons/:lessonId/progress", c.enrollment.ApplyLessonProgress)

		// 测验
		authGroup.GET("/lessons/:lessonId/quiz", c.quiz.GetQuiz)
		authGroup.POST("/lessons/:lessonId/quiz/submit", c.quiz.SubmitQuiz)

		// 教师相关接口
		teacher := authGroup.Group("/")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/courses", c.catalog.CreateCourse)
			teacher.POST("/courses/:courseId/topics", c.catalog.CreateTopic)
			teacher.POST("/topics/:topicId/lessons", c.catalog.CreateLesson)
			teacher.PUT("/courses/:courseId/topics/order", c.catalog.ReorderTopics)
			teacher.PUT("/topics/:topicId/lessons/order", c.catalog.ReorderLessons)
			teacher.GET("/courses/:courseId/analytics", c.analytics.GetCourseAnalytics)
		}
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.PATCH("/enrollments/:enrollmentId/status", c.enrollment.UpdateStatus)
		admin.DELETE("/enrollments/:enrollmentId", c.enrollment.Delete)
		admin.DELETE("/courses/:courseId", c.catalog.DeleteCourse)
	}
}
