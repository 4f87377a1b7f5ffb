package main

import (
	"net/http"

	"bookit/internal/shared/middleware"
	"bookit/internal/shared/response"
	"bookit/pkg/container"

	"github.com/gin-gonic/gin"
)

const msgBadURL = "Url format invalid, should be /books or /books/[id] where id is a positive integer"

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)
	if c.RateLimiter != nil {
		router.Use(middleware.RateLimit(c.RateLimiter))
	}

	router.GET("/health", healthCheckHandler(c))
	setupBookRoutes(router, c)
	setupURLRoutes(router, c)
	setupDocsRoutes(router)

	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, msgBadURL)
	})
	router.NoMethod(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(router *gin.Engine, c *container.Container) {
	books := router.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.POST("", c.BookHandler.CreateBook)
		books.GET("/:id", c.BookHandler.GetBook)
		books.PUT("/:id", c.BookHandler.UpdateBook)
		books.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

// ========================================
// URL CLEANER ROUTES
// ========================================
func setupURLRoutes(router *gin.Engine, c *container.Container) {
	router.POST("/url", c.URLHandler.ProcessURL)
	router.POST("/url/", c.URLHandler.ProcessURL)
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks, healthy := c.Health(ctx.Request.Context())
		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		response.Success(ctx, status, gin.H{
			"status":  state,
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
