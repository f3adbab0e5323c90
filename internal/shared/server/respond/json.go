package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// JSON writes a successful envelope with the given status.
func JSON(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// OK writes a 200 OK envelope.
func OK(c *gin.Context, data any, message string) {
	JSON(c, http.StatusOK, data, message)
}
