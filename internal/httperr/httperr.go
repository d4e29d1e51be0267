package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string       `json:"error_code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond writes err using the business taxonomy. Anything else is
// attached to the context for the request logger and answered opaquely.
func Respond(c *gin.Context, err error) {
	if be, ok := AsBusiness(err); ok {
		c.JSON(StatusFor(be.Kind), HTTPError{
			Code:    be.Code,
			Message: be.Message,
			Fields:  be.Fields,
		})
		return
	}

	_ = c.Error(err)
	Internal(c, "internal_error", "Internal server error")
}
