package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the only error shape the API emits. Clients key on "msg".
type ErrorBody struct {
	Msg string `json:"msg"`
}

// Success writes data as the raw JSON body. The /books contract has no envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// NoContent writes a status with an empty body.
func NoContent(c *gin.Context, statusCode int) {
	c.Status(statusCode)
}

// Error responses
func Error(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Msg: message})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, 429, message)
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, 500, message)
}
