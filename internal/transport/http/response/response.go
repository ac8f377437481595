package response

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON error envelope every failure is mapped to at the
// request boundary.
type ErrorBody struct {
	Error string `json:"error"`
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorBody{Error: message})
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}
