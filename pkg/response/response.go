package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/logger"
	"github.com/jengzang/cdr-indicators/internal/repository"
	"github.com/jengzang/cdr-indicators/internal/service"
)

// Response represents a standard API response
type Response struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Accepted []string    `json:"accepted,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error sends an error response. err may be nil.
func Error(c *gin.Context, code int, message string, err error) {
	resp := Response{
		Code:    code,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
		var ee *engine.Error
		if errors.As(err, &ee) {
			resp.Accepted = ee.Accepted
		}
		_ = c.Error(err)
	}
	if code >= http.StatusInternalServerError {
		logger.C(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(message)
	}
	c.JSON(code, resp)
}

// StatusOf maps an error to its HTTP status
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, repository.ErrUserNotFound), errors.Is(err, service.ErrIndicatorNotFound):
		return http.StatusNotFound
	}
	switch engine.KindOf(err) {
	case engine.KindInvalidParameter, engine.KindInvalidSummaryMode:
		return http.StatusBadRequest
	case engine.KindTypeMismatch:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// FromError sends err with the status StatusOf picks
func FromError(c *gin.Context, message string, err error) {
	Error(c, StatusOf(err), message, err)
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string, err error) {
	Error(c, http.StatusInternalServerError, message, err)
}
