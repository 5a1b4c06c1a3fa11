package api

import (
	"net/http"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the shape of every JSON response.
type Envelope struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message" example:"ok"`
	Data    interface{} `json:"data,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Status: StatusSuccess, Message: message, Data: data})
}

// Error writes an error envelope with an explicit status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Status: StatusError, Message: message})
}

// Fail translates err into an error envelope. Classified errors keep their
// message; anything else is logged and reported as a generic 500.
func Fail(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		Error(c, apperr.StatusCode(e), e.Message)
		return
	}
	logger.Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err.Error(),
	)
	Error(c, http.StatusInternalServerError, "internal server error")
}
