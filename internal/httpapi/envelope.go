// Package httpapi holds the pieces shared by every HTTP surface of the
// catalog service: the response envelope, middleware and system routes.
package httpapi

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success  bool   `json:"success" example:"true"`
	Data     any    `json:"data,omitempty"`
	Count    *int   `json:"count,omitempty" example:"6"`
	Fallback bool   `json:"fallback,omitempty" example:"false"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty" example:"product not found"`
}

func OK(c *gin.Context, status int, data any, fallback bool) {
	c.JSON(status, Envelope{Success: true, Data: data, Fallback: fallback})
}

// OKList is OK with the number of returned items.
func OKList(c *gin.Context, status int, data any, count int, fallback bool) {
	c.JSON(status, Envelope{Success: true, Data: data, Count: &count, Fallback: fallback})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Error: message})
}
