package main

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed docs/openapi.yaml
var openAPISpec []byte

// ========================================
// DOCS ROUTES
// ========================================
func setupDocsRoutes(router *gin.Engine) {
	serve := func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openAPISpec)
	}
	router.GET("/docs", serve)
	router.GET("/docs/openapi.yaml", serve)
}
