package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/handlers"
	"edu-dashboard-api/internal/middleware"
	"edu-dashboard-api/internal/query"
)

// Deps are the collaborators the router hands to handlers.
type Deps struct {
	Queries  *query.Client
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

func SetupRoutes(deps Deps) *gin.Engine {
	if deps.Queries == nil {
		deps.Queries = query.NewClient(nil)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"message":      "Education dashboard API is running",
			"cacheEntries": deps.Queries.Store().Len(),
		})
	})
	ginRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.GET("/courses", handlers.GetCourses)
		protectedRoutes.POST("/courses", handlers.CreateCourse)
		protectedRoutes.GET("/courses/:id", handlers.GetCourseByID)
		protectedRoutes.GET("/courses/:id/lessons", handlers.GetLessons)
		protectedRoutes.POST("/courses/:id/lessons", handlers.CreateLesson)

		protectedRoutes.GET("/quizzes", handlers.GetQuizzes)
		protectedRoutes.POST("/quizzes", handlers.CreateQuiz)
		protectedRoutes.POST("/quizzes/:id/attempts", handlers.CreateAttempt)

		protectedRoutes.GET("/forum/threads", handlers.GetThreads)
		protectedRoutes.POST("/forum/threads", handlers.CreateThread)

		protectedRoutes.GET("/analytics/summary", handlers.GetSummary)
		protectedRoutes.GET("/users", handlers.GetAllUsers)

		protectedRoutes.GET("/ws/dashboard", handlers.DashboardSocket(deps.Queries, deps.Logger))
	}

	return ginRouter
}
